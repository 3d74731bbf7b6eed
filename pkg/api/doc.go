// Package api serves a loaded catalog over HTTP.
//
// All endpoints are read-only GETs returning JSON:
//
//	GET /healthz                              package count
//	GET /manifest                             manifest header and last ingest run
//	GET /packages?q=&category=&limit=         names, category members, or fuzzy matches
//	GET /packages/{name}                      current record
//	GET /packages/{name}/versions             current and previous versions
//	GET /packages/{name}/versions/{version}   record of one version
//	GET /packages/{name}/fields/{field}       one field (?version=)
//	GET /packages/{name}/deps                 direct dependencies (?version=)
//	GET /packages/{name}/closure              transitive closure (?version=)
//	GET /packages/{name}/graph                closure graph (?version=, ?format=json|yaml|dot)
//	GET /plan?pkg=a&pkg=b                     install plan for several roots
//
// Errors are returned as {"error": "...", "code": "..."} with 404 for
// PACKAGE_NOT_FOUND and VERSION_NOT_FOUND, 400 for invalid input, and 500
// otherwise.
//
// The server must not be run against a catalog that is being reloaded.
package api
