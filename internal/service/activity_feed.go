package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/sync/errgroup"

	"projecthub.app/server/common/logger"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/service/github"
)

const feedPageSize = 30

// ActivityFeedService aggregates recent repository activity from the GitHub
// REST API into a single normalized feed.
type ActivityFeedService struct {
	newReader github.ClientFactory
}

func NewActivityFeedService(newReader github.ClientFactory) *ActivityFeedService {
	return &ActivityFeedService{newReader: newReader}
}

// Aggregate fetches commits, issues, pull requests and recent events for the
// repository concurrently and merges them into one feed sorted newest first.
// Any single fetch failure fails the whole aggregation.
func (s *ActivityFeedService) Aggregate(ctx context.Context, owner, repo, token string) ([]model.RepoActivity, error) {
	span := logger.StartSpan(ctx, "activity_feed.aggregate")
	defer span.End()
	ctx = span.Context()

	reader := s.newReader(ctx, token)

	var (
		commits []*gh.RepositoryCommit
		issues  []*gh.Issue
		pulls   []*gh.PullRequest
		events  []*gh.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commits, err = reader.ListCommits(gctx, owner, repo, feedPageSize)
		if err != nil {
			return fmt.Errorf("list commits: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		issues, err = reader.ListIssues(gctx, owner, repo, feedPageSize)
		if err != nil {
			return fmt.Errorf("list issues: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pulls, err = reader.ListPullRequests(gctx, owner, repo, feedPageSize)
		if err != nil {
			return fmt.Errorf("list pull requests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = reader.ListEvents(gctx, owner, repo, feedPageSize)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "activity aggregation failed",
			slog.String("owner", owner), slog.String("repo", repo), slog.Any("error", err))
		return nil, err
	}

	feed := make([]model.RepoActivity, 0, len(commits)+len(issues)+len(pulls)+len(events))
	for _, c := range commits {
		feed = append(feed, normalizeCommit(c))
	}
	for _, i := range issues {
		// Pull requests surface through the issues endpoint too; the
		// dedicated fetch already covers them.
		if i.IsPullRequest() || i.GetState() != "open" {
			continue
		}
		feed = append(feed, normalizeIssue(i))
	}
	for _, p := range pulls {
		feed = append(feed, normalizePull(p))
	}
	for _, e := range events {
		if a, ok := normalizeEvent(e); ok {
			feed = append(feed, a)
		}
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})

	slog.DebugContext(logger.WithLogFields(ctx, logger.LogFields{Component: "activity_feed"}),
		"aggregated repo activity",
		slog.String("owner", owner), slog.String("repo", repo), slog.Int("items", len(feed)))
	return feed, nil
}

func normalizeCommit(c *gh.RepositoryCommit) model.RepoActivity {
	actor := model.RepoActor{Name: "Unknown"}
	if name := c.GetCommit().GetAuthor().GetName(); name != "" {
		actor.Name = name
	} else if login := c.GetAuthor().GetLogin(); login != "" {
		actor.Name = login
	}
	actor.AvatarURL = c.GetAuthor().GetAvatarURL()
	return model.RepoActivity{
		ID:        "commit-" + c.GetSHA(),
		Kind:      model.RepoActivityCommit,
		Actor:     actor,
		Summary:   firstLine(c.GetCommit().GetMessage()),
		Timestamp: c.GetCommit().GetAuthor().GetDate().Time,
		URL:       c.HTMLURL,
	}
}

func normalizeIssue(i *gh.Issue) model.RepoActivity {
	return model.RepoActivity{
		ID:   fmt.Sprintf("issue-%d", i.GetNumber()),
		Kind: model.RepoActivityIssue,
		Actor: model.RepoActor{
			Name:      i.GetUser().GetLogin(),
			AvatarURL: i.GetUser().GetAvatarURL(),
		},
		Summary:   fmt.Sprintf("opened issue #%d: %s", i.GetNumber(), i.GetTitle()),
		Timestamp: i.GetCreatedAt().Time,
		URL:       i.HTMLURL,
	}
}

func normalizePull(p *gh.PullRequest) model.RepoActivity {
	verb := "opened"
	ts := p.GetCreatedAt().Time
	switch {
	case p.MergedAt != nil:
		verb = "merged"
		ts = p.GetMergedAt().Time
	case p.GetState() == "closed":
		verb = "closed"
		ts = p.GetClosedAt().Time
	}
	return model.RepoActivity{
		ID:   fmt.Sprintf("pr-%d", p.GetNumber()),
		Kind: model.RepoActivityPullRequest,
		Actor: model.RepoActor{
			Name:      p.GetUser().GetLogin(),
			AvatarURL: p.GetUser().GetAvatarURL(),
		},
		Summary:   fmt.Sprintf("%s pull request #%d: %s", verb, p.GetNumber(), p.GetTitle()),
		Timestamp: ts,
		URL:       p.HTMLURL,
	}
}

// normalizeEvent keeps new comments only. Every other event type restates
// what the commit, issue and pull request fetches already carry, so it is
// dropped.
func normalizeEvent(e *gh.Event) (model.RepoActivity, bool) {
	if e.GetType() != "IssueCommentEvent" {
		return model.RepoActivity{}, false
	}
	payload, err := e.ParsePayload()
	if err != nil {
		return model.RepoActivity{}, false
	}
	comment, ok := payload.(*gh.IssueCommentEvent)
	if !ok || comment.GetAction() != "created" {
		return model.RepoActivity{}, false
	}
	return model.RepoActivity{
		ID:   "event-" + e.GetID(),
		Kind: model.RepoActivityComment,
		Actor: model.RepoActor{
			Name:      e.GetActor().GetLogin(),
			AvatarURL: e.GetActor().GetAvatarURL(),
		},
		Summary:   fmt.Sprintf("commented on #%d", comment.GetIssue().GetNumber()),
		Timestamp: e.GetCreatedAt().Time,
		URL:       comment.GetComment().HTMLURL,
	}, true
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
