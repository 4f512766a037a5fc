// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts HTTP to the account, listing, and
// administration services. Route protection itself happens earlier, in
// the middleware package; handlers only read the principal it attached.
package api
