// Package growatt provides a client for the Growatt ShineServer mobile API.
//
// The mobile API is undocumented. It authenticates with a session cookie that is
// issued after posting the account name and a masked password, and it answers every
// request with a loosely shaped JSON document. This package does not try to type those
// documents: each fetch returns a Value that mirrors the decoded JSON verbatim.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := growatt.NewClient(logger, growatt.WithTimeout(15*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	sess, err := client.Login(ctx, "user@example.com", "secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	plant, err := client.ResolvePlant(ctx, sess, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	status, err := client.FetchMixStatus(ctx, sess, "MIX001", plant.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(status.Get("ppv").Str())
//
// # Error Handling
//
// Every failure can be classified with errors.Is:
//
//   - ErrAuthentication: credentials rejected or login response unusable
//   - ErrEmptyResult: a listing returned no records
//   - ErrTransport: network failure, timeout or non-success HTTP status
//   - ErrSessionExpired: the server no longer accepts the session; log in again
//   - ErrMalformedResponse: body is not JSON or lacks a required field
//   - ErrInvalidArgument: the call itself was unusable (empty credentials, unknown endpoint)
//
// The client never retries. Callers own retry policy.
package growatt
