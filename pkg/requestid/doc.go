// Package requestid tags every HTTP request with a correlation ID.
//
// Middleware reuses a well-formed client supplied X-Request-ID header or
// generates a UUID, echoes it in the response and stores it in the request
// context. LoggerExtractor plugs the ID into structured logs:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
