package sse_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/common/id"
	"projecthub.app/server/internal/sse"
)

type fakeWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	flushed int
	failing bool
}

func (f *fakeWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errors.New("broken pipe")
	}
	return f.buf.Write(p)
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
}

func (f *fakeWriter) contents() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func (f *fakeWriter) flushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushed
}

var _ = Describe("Registry", func() {
	var registry *sse.Registry

	BeforeEach(func() {
		Expect(id.Init(1)).To(Succeed())
		registry = sse.NewRegistry(30 * time.Second)
	})

	Describe("Add and Remove", func() {
		It("tracks connections per project", func() {
			w1 := &fakeWriter{}
			w2 := &fakeWriter{}

			id1 := registry.Add(1, 10, w1)
			id2 := registry.Add(1, 11, w2)
			registry.Add(2, 10, &fakeWriter{})

			Expect(id1).NotTo(Equal(id2))
			Expect(registry.Count(1)).To(Equal(2))
			Expect(registry.Count(2)).To(Equal(1))
			Expect(registry.Total()).To(Equal(3))
		})

		It("issues unique IDs for simultaneous connections", func() {
			seen := map[int64]bool{}
			for i := 0; i < 100; i++ {
				connID := registry.Add(1, 10, &fakeWriter{})
				Expect(seen[connID]).To(BeFalse())
				seen[connID] = true
			}
		})

		It("removing the last connection forgets the project", func() {
			connID := registry.Add(1, 10, &fakeWriter{})
			registry.Remove(1, connID)

			Expect(registry.Count(1)).To(BeZero())
			Expect(registry.Total()).To(BeZero())
		})

		It("removing twice is a no-op", func() {
			connID := registry.Add(1, 10, &fakeWriter{})
			registry.Remove(1, connID)
			registry.Remove(1, connID)
			Expect(registry.Total()).To(BeZero())
		})
	})

	Describe("Broadcast", func() {
		It("writes one frame to every project subscriber and flushes", func() {
			w1 := &fakeWriter{}
			w2 := &fakeWriter{}
			other := &fakeWriter{}
			registry.Add(1, 10, w1)
			registry.Add(1, 11, w2)
			registry.Add(2, 12, other)

			registry.Broadcast(1, "activity", map[string]any{"id": 7})

			Expect(w1.contents()).To(Equal("event: activity\ndata: {\"id\":7}\n\n"))
			Expect(w2.contents()).To(Equal(w1.contents()))
			Expect(w1.flushCount()).To(Equal(1))
			Expect(len(other.contents())).To(BeZero())
		})

		It("reaps connections whose writes fail without dropping the rest", func() {
			healthy := &fakeWriter{}
			dead := &fakeWriter{failing: true}
			registry.Add(1, 10, healthy)
			registry.Add(1, 11, dead)

			registry.Broadcast(1, "activity", "payload")

			Expect(healthy.contents()).To(ContainSubstring("event: activity"))
			Expect(registry.Count(1)).To(Equal(1))
		})

		It("is a no-op for a project with no subscribers", func() {
			registry.Broadcast(99, "activity", "payload")
			Expect(registry.Total()).To(BeZero())
		})
	})

	Describe("Heartbeat", func() {
		It("writes a comment to every connection across projects", func() {
			w1 := &fakeWriter{}
			w2 := &fakeWriter{}
			registry.Add(1, 10, w1)
			registry.Add(2, 11, w2)

			registry.Heartbeat()

			Expect(w1.contents()).To(Equal(": heartbeat\n\n"))
			Expect(w2.contents()).To(Equal(": heartbeat\n\n"))
		})

		It("reaps dead connections", func() {
			dead := &fakeWriter{failing: true}
			registry.Add(1, 10, dead)
			registry.Add(1, 11, &fakeWriter{})

			registry.Heartbeat()

			Expect(registry.Count(1)).To(Equal(1))
		})

		It("does nothing with no connections", func() {
			registry.Heartbeat()
			Expect(registry.Total()).To(BeZero())
		})
	})

	Describe("Send", func() {
		It("delivers a frame to one connection only", func() {
			target := &fakeWriter{}
			bystander := &fakeWriter{}
			connID := registry.Add(1, 10, target)
			registry.Add(1, 11, bystander)

			Expect(registry.Send(1, connID, "connected", map[string]int64{"project_id": 1})).To(Succeed())

			Expect(target.contents()).To(ContainSubstring("event: connected"))
			Expect(len(bystander.contents())).To(BeZero())
		})

		It("errors for an unknown connection", func() {
			Expect(registry.Send(1, 12345, "connected", nil)).NotTo(Succeed())
		})

		It("removes the connection when the write fails", func() {
			dead := &fakeWriter{failing: true}
			connID := registry.Add(1, 10, dead)

			Expect(registry.Send(1, connID, "connected", nil)).NotTo(Succeed())
			Expect(registry.Count(1)).To(BeZero())
		})
	})

	Describe("heartbeat loop", func() {
		It("beats on the configured interval until stopped", func() {
			w := &fakeWriter{}
			registry = sse.NewRegistry(10 * time.Millisecond)
			registry.Add(1, 10, w)

			registry.Start(context.Background())
			Eventually(func() string { return w.contents() }).Should(ContainSubstring(": heartbeat"))
			registry.Stop()
		})

		It("Stop without Start is a no-op", func() {
			registry.Stop()
		})
	})
})
