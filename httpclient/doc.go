// Package httpclient is the HTTP client shared by every remote collaborator
// (speech-to-text, diarization, event classification, webhooks).
//
// It resolves paths against a base URL, applies authentication, encodes JSON
// and multipart bodies, maps failures onto AppErrors and retries retryable
// ones according to a resilience.Policy.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Service: "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    Auth:    httpclient.BearerAuth(key),
//	})
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/audio/transcriptions",
//	    Body:   &httpclient.MultipartBody{...},
//	})
package httpclient
