// Package github wraps the GitHub REST API behind a narrow interface so
// services that aggregate or poll repository activity can be tested with
// fakes.
package github

import (
	"context"
	"net/http"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// RepoReader is the read-only view of a repository used by the activity
// aggregator and the polling change detector.
type RepoReader interface {
	ListCommits(ctx context.Context, owner, repo string, perPage int) ([]*gh.RepositoryCommit, error)
	ListIssues(ctx context.Context, owner, repo string, perPage int) ([]*gh.Issue, error)
	ListPullRequests(ctx context.Context, owner, repo string, perPage int) ([]*gh.PullRequest, error)
	ListEvents(ctx context.Context, owner, repo string, perPage int) ([]*gh.Event, error)
}

// ClientFactory builds a RepoReader for a stored access token. Injected so
// tests can substitute fakes without touching the network.
type ClientFactory func(ctx context.Context, token string) RepoReader

type restReader struct {
	client *gh.Client
}

// NewReader builds a RepoReader over the GitHub REST API, authenticated
// with the given token when one is present.
func NewReader(ctx context.Context, token string) RepoReader {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		))
	}
	return &restReader{client: gh.NewClient(httpClient)}
}

func (r *restReader) ListCommits(ctx context.Context, owner, repo string, perPage int) ([]*gh.RepositoryCommit, error) {
	commits, _, err := r.client.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	})
	return commits, err
}

func (r *restReader) ListIssues(ctx context.Context, owner, repo string, perPage int) ([]*gh.Issue, error) {
	issues, _, err := r.client.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	})
	return issues, err
}

func (r *restReader) ListPullRequests(ctx context.Context, owner, repo string, perPage int) ([]*gh.PullRequest, error) {
	pulls, _, err := r.client.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	})
	return pulls, err
}

func (r *restReader) ListEvents(ctx context.Context, owner, repo string, perPage int) ([]*gh.Event, error) {
	events, _, err := r.client.Activity.ListRepositoryEvents(ctx, owner, repo, &gh.ListOptions{
		PerPage: perPage,
	})
	return events, err
}
