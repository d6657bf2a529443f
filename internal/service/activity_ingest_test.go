package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/common/id"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/queue"
	"projecthub.app/server/internal/service"
)

var _ = Describe("ActivityIngestService", func() {
	var (
		ctx       context.Context
		repoLinks *mockRepoLinkStore
		activity  *mockActivityStore
		producer  *mockQueueProducer
		svc       *service.ActivityIngestService
	)

	input := func() service.IngestInput {
		return service.IngestInput{
			DeliveryID:    "delivery-1",
			EventKind:     model.EventKindPush,
			RepoOwner:     "acme",
			RepoName:      "widgets",
			ActorUsername: "octocat",
			Summary:       "2 commits pushed to main",
			OccurredAt:    time.Now().UTC(),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		repoLinks = &mockRepoLinkStore{}
		activity = &mockActivityStore{}
		producer = &mockQueueProducer{}
		svc = service.NewActivityIngestService(repoLinks, activity, producer)
	})

	Context("when the repository is linked", func() {
		BeforeEach(func() {
			repoLinks.getByRepoFn = func(_ context.Context, owner, name string) (*model.RepoLink, error) {
				Expect(owner).To(Equal("acme"))
				Expect(name).To(Equal("widgets"))
				return &model.RepoLink{ID: 5, ProjectID: 42, Owner: owner, Name: name}, nil
			}
		})

		It("persists the record against the linked project", func() {
			record, created, err := svc.Ingest(ctx, input())

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(record.ProjectID).To(Equal(int64(42)))
			Expect(record.ID).NotTo(BeZero())
			Expect(record.ExternalEventID).To(Equal("delivery-1"))
			Expect(record.EventKind).To(Equal(model.EventKindPush))
			Expect(record.Summary).To(Equal("2 commits pushed to main"))
		})

		It("assigns each record its own identifier before the insert", func() {
			first, _, err := svc.Ingest(ctx, input())
			Expect(err).NotTo(HaveOccurred())

			second := input()
			second.DeliveryID = "delivery-2"
			record, _, err := svc.Ingest(ctx, second)
			Expect(err).NotTo(HaveOccurred())

			Expect(activity.capturedRecord.ID).NotTo(BeZero())
			Expect(record.ID).NotTo(Equal(first.ID))
		})

		It("enqueues a fan-out message for new records", func() {
			activity.createOrGetFn = func(_ context.Context, rec *model.ActivityRecord) (*model.ActivityRecord, bool, error) {
				rec.ID = 777
				return rec, true, nil
			}

			_, created, err := svc.Ingest(ctx, input())

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(producer.enqueued).To(HaveLen(1))
			Expect(producer.enqueued[0].ActivityID).To(Equal(int64(777)))
			Expect(producer.enqueued[0].ProjectID).To(Equal(int64(42)))
			Expect(producer.enqueued[0].DeliveryID).To(Equal("delivery-1"))
		})

		It("returns the stored record without re-queueing on redelivery", func() {
			existing := &model.ActivityRecord{ID: 9, ProjectID: 42, ExternalEventID: "delivery-1"}
			activity.createOrGetFn = func(_ context.Context, _ *model.ActivityRecord) (*model.ActivityRecord, bool, error) {
				return existing, false, nil
			}

			record, created, err := svc.Ingest(ctx, input())

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(record).To(Equal(existing))
			Expect(producer.enqueued).To(BeEmpty())
		})

		It("still succeeds when the queue is unavailable", func() {
			// The record is durable before the enqueue happens; a queue
			// failure must not surface to the webhook caller.
			producer.enqueueFn = func(_ context.Context, _ queue.ActivityMessage) error {
				return errors.New("redis down")
			}

			record, created, err := svc.Ingest(ctx, input())

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(record).NotTo(BeNil())
		})
	})

	Context("when no project links the repository", func() {
		It("returns ErrProjectNotLinked", func() {
			_, _, err := svc.Ingest(ctx, input())

			Expect(err).To(MatchError(service.ErrProjectNotLinked))
			Expect(activity.capturedRecord).To(BeNil())
			Expect(producer.enqueued).To(BeEmpty())
		})
	})

	Context("when persistence fails", func() {
		It("propagates the error", func() {
			repoLinks.getByRepoFn = func(_ context.Context, owner, name string) (*model.RepoLink, error) {
				return &model.RepoLink{ProjectID: 42}, nil
			}
			activity.createOrGetFn = func(_ context.Context, _ *model.ActivityRecord) (*model.ActivityRecord, bool, error) {
				return nil, false, errors.New("constraint violation")
			}

			_, _, err := svc.Ingest(ctx, input())

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("constraint violation"))
			Expect(producer.enqueued).To(BeEmpty())
		})
	})
})
