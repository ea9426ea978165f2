// Package pages deploys static sites through a hosting platform's direct
// upload API. It hashes every file with a content-addressed fingerprint,
// asks the remote which fingerprints it already stores, uploads only the
// missing content with bounded concurrency, and registers a deployment
// referencing the full file manifest.
//
// The module emphasizes a small surface: a client, two deploy entry points
// (a directory tree or an explicit file list), and functional options for
// everything else.
//
// Key behaviors:
//   - Content-addressed deduplication: unchanged files are never re-uploaded
//   - Bounded-concurrency uploads with a configurable worker count
//   - Automatic upload-credential caching with refresh before expiry
//   - Retry with polynomial backoff around every remote call
//   - Special files (_headers, _redirects, _worker.js) discovered in
//     directory mode or supplied explicitly per deployment
//
// Example usage:
//
//	client, err := pages.New(accountID, "my-site", apiToken)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.DeployDirectory(ctx, "./public",
//	    pages.WithBranch("main"),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("deployed:", result.URL)
package pages
