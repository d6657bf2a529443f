package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"projecthub.app/server/internal/service/github"
)

// RepoWatchService answers "has anything happened since this watermark" with
// three cheap single-item fetches instead of a full aggregation.
type RepoWatchService struct {
	newReader github.ClientFactory
}

func NewRepoWatchService(newReader github.ClientFactory) *RepoWatchService {
	return &RepoWatchService{newReader: newReader}
}

// LatestActivity returns the timestamp and kind ("commit", "issue" or
// "pull_request") of the most recent change in the repository. A repository
// with no activity at all yields the zero time.
func (s *RepoWatchService) LatestActivity(ctx context.Context, owner, repo, token string) (time.Time, string, error) {
	reader := s.newReader(ctx, token)

	var commitAt, issueAt, pullAt time.Time

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		commits, err := reader.ListCommits(gctx, owner, repo, 1)
		if err != nil {
			return fmt.Errorf("latest commit: %w", err)
		}
		if len(commits) > 0 {
			commitAt = commits[0].GetCommit().GetAuthor().GetDate().Time
		}
		return nil
	})
	g.Go(func() error {
		issues, err := reader.ListIssues(gctx, owner, repo, 1)
		if err != nil {
			return fmt.Errorf("latest issue: %w", err)
		}
		if len(issues) > 0 {
			issueAt = issues[0].GetUpdatedAt().Time
		}
		return nil
	})
	g.Go(func() error {
		pulls, err := reader.ListPullRequests(gctx, owner, repo, 1)
		if err != nil {
			return fmt.Errorf("latest pull request: %w", err)
		}
		if len(pulls) > 0 {
			pullAt = pulls[0].GetUpdatedAt().Time
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return time.Time{}, "", err
	}

	latest, kind := commitAt, "commit"
	if issueAt.After(latest) {
		latest, kind = issueAt, "issue"
	}
	if pullAt.After(latest) {
		latest, kind = pullAt, "pull_request"
	}
	return latest, kind, nil
}

// HasChangedSince reports whether repository activity newer than the
// watermark exists, along with which kind changed and the new watermark to
// carry forward.
func (s *RepoWatchService) HasChangedSince(ctx context.Context, owner, repo, token string, since time.Time) (bool, string, time.Time, error) {
	latest, kind, err := s.LatestActivity(ctx, owner, repo, token)
	if err != nil {
		return false, "", since, err
	}
	if latest.After(since) {
		return true, kind, latest, nil
	}
	return false, "", since, nil
}
