// Package httpclient is a small JSON client for calling other services.
//
//	api := httpclient.New(
//		httpclient.WithBaseURL("https://api.example.com/v1"),
//		httpclient.WithHeader("X-Client", "my-app"),
//		httpclient.WithTimeout(5*time.Second),
//	)
//	var user User
//	err := api.Get(ctx, "/users/42", &user)
//	if httpclient.IsStatus(err, http.StatusNotFound) { ... }
//
// Each attempt gets its own timeout. Idempotent requests are retried with
// exponential backoff (github.com/sethvargo/go-retry) on transport errors,
// 429 and 5xx responses.
package httpclient
