// Package setupini reads Cygwin-style setup.ini package manifests.
//
// # Overview
//
// A manifest is line-oriented text mixing "@ name" package headers,
// "key: value" sections, quoted values that may span several lines, and
// "[prev]" markers that introduce historical versions of the package above
// them:
//
//	release: cygwin
//	arch: x86_64
//
//	@ bash
//	sdesc: "The GNU Bourne Again SHell"
//	category: Base Shells
//	requires: coreutils libiconv2
//	version: 4.4.12-3
//	install: x86_64/release/bash/bash-4.4.12-3.tar.xz 1395032 1f1b...
//	depends2: coreutils, libiconv2
//	[prev]
//	version: 4.4.11-2
//	install: x86_64/release/bash/bash-4.4.11-2.tar.xz 1381276 9ad0...
//
// Reading happens in two layers. The [Lexer] turns text into a stream of
// [Token]s without any notion of packages. The [Parser] feeds those tokens
// through a finite-state machine whose current [Context] is one of Idle,
// Package, PackageSection, PrevVersion, or PrevVersionSection, and hands out
// a [Group] (one [PackageRecord] plus its [PrevVersionRecord]s) as soon as
// each package is complete.
//
// # Irregular input
//
// The format has no formal grammar, so the reader never fails on content.
// Irregularities are reported as [Anomaly] values and parsing continues:
// an orphan "[prev]" before any package is dropped, and keys the catalog has
// no field for are ignored. Only a failing [io.Reader] produces an error.
//
// # Quoting
//
// Section text is stored with single quotes doubled ([EscapeQuotes]), the
// literal form expected by a store that delimits strings with single quotes.
// Consumers undo one layer with [UnescapeQuotes] when reading values back.
package setupini
