package service_test

import (
	"context"
	"errors"
	"time"

	gh "github.com/google/go-github/v68/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/internal/service"
)

var _ = Describe("RepoWatchService", func() {
	var (
		ctx    context.Context
		reader *fakeRepoReader
		svc    *service.RepoWatchService
		now    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		reader = &fakeRepoReader{}
		svc = service.NewRepoWatchService(fakeFactory(reader))
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	Describe("LatestActivity", func() {
		It("returns the zero time for a silent repository", func() {
			latest, _, err := svc.LatestActivity(ctx, "acme", "widgets", "token")
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.IsZero()).To(BeTrue())
		})

		It("picks the newest source and names its kind", func() {
			reader.commits = []*gh.RepositoryCommit{commitAt("abc", "alice", now.Add(-2*time.Hour))}
			reader.issues = []*gh.Issue{{
				Number:    ghInt(1),
				UpdatedAt: ghTime(now.Add(-1 * time.Hour)),
			}}
			reader.pulls = []*gh.PullRequest{{
				Number:    ghInt(2),
				UpdatedAt: ghTime(now),
			}}

			latest, kind, err := svc.LatestActivity(ctx, "acme", "widgets", "token")

			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal("pull_request"))
			Expect(latest).To(Equal(now))
		})

		It("reports commits when they are newest", func() {
			reader.commits = []*gh.RepositoryCommit{commitAt("abc", "alice", now)}
			reader.issues = []*gh.Issue{{UpdatedAt: ghTime(now.Add(-1 * time.Hour))}}

			latest, kind, err := svc.LatestActivity(ctx, "acme", "widgets", "token")

			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal("commit"))
			Expect(latest).To(Equal(now))
		})

		It("propagates upstream failures", func() {
			reader.pullsErr = errors.New("rate limited")
			_, _, err := svc.LatestActivity(ctx, "acme", "widgets", "token")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("HasChangedSince", func() {
		It("reports a change and advances the watermark", func() {
			reader.issues = []*gh.Issue{{UpdatedAt: ghTime(now)}}

			changed, kind, next, err := svc.HasChangedSince(ctx, "acme", "widgets", "token", now.Add(-1*time.Hour))

			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(kind).To(Equal("issue"))
			Expect(next).To(Equal(now))
		})

		It("reports no change when nothing is newer than the watermark", func() {
			reader.issues = []*gh.Issue{{UpdatedAt: ghTime(now.Add(-2 * time.Hour))}}
			since := now

			changed, kind, next, err := svc.HasChangedSince(ctx, "acme", "widgets", "token", since)

			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(kind).To(BeEmpty())
			Expect(next).To(Equal(since))
		})

		It("keeps the watermark on upstream failure", func() {
			reader.commitsErr = errors.New("boom")
			since := now

			changed, _, next, err := svc.HasChangedSince(ctx, "acme", "widgets", "token", since)

			Expect(err).To(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(next).To(Equal(since))
		})
	})
})
