package pages_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/webfoundry/pages"
	"github.com/webfoundry/pages/pagestypes"
)

// Deploying a built site directory is the common path: every file below
// the root is fingerprinted and only missing content is uploaded.
func Example() {
	client, err := pages.New(os.Getenv("ACCOUNT_ID"), "my-site", os.Getenv("CLOUDFLARE_API_TOKEN"),
		pages.WithLogger(slog.Default()),
	)
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.DeployDirectory(context.Background(), "./public",
		pages.WithBranch("main"),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("deployed:", result.URL)
}

// Deploying an explicit file list skips the filesystem entirely; content
// can be supplied inline or through a lazy producer for large files.
func ExampleClient_Deploy() {
	client, err := pages.New(os.Getenv("ACCOUNT_ID"), "my-site", os.Getenv("CLOUDFLARE_API_TOKEN"))
	if err != nil {
		log.Fatal(err)
	}

	archive := []*pagestypes.DeploymentFile{
		{Name: "index.html", Content: []byte("<html>hello</html>")},
		{
			Name: "media/film.mp4",
			// Hash precomputed with pages.Fingerprint, so the producer
			// only runs when the platform is missing this content.
			Hash: os.Getenv("FILM_HASH"),
			ContentFunc: func() ([]byte, error) {
				return os.ReadFile("media/film.mp4")
			},
		},
	}

	result, err := client.Deploy(context.Background(), archive)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("deployed:", result.ID)
}
