package events

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", Ordered, func() {
	Context("buffer", func() {
		It("add successfully", func() {
			buffer := newBuffer()

			// add the first message
			prev := buffer.PushBack(&message{Kind: QuoteCreatedMessageKind, Data: []byte("msg1")})
			Expect(prev).To(Equal(0))
			Expect(buffer.Size()).To(Equal(1))
			Expect(buffer.head).NotTo(BeNil())
			Expect(buffer.tail).NotTo(BeNil())

			// second
			prev = buffer.PushBack(&message{Kind: QuoteCreatedMessageKind, Data: []byte("msg2")})
			Expect(prev).To(Equal(1))
			Expect(buffer.Size()).To(Equal(2))

			Expect(buffer.head.Data).To(Equal([]byte("msg1")))
			Expect(buffer.tail.Data).To(Equal([]byte("msg2")))

			// third
			buffer.PushBack(&message{Kind: QuoteDeletedMessageKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))
			Expect(buffer.head.Data).To(Equal([]byte("msg1")))
			Expect(buffer.tail.Data).To(Equal([]byte("msg3")))
		})

		It("pop", func() {
			buffer := newBuffer()

			buffer.PushBack(&message{Kind: QuoteCreatedMessageKind, Data: []byte("msg1")})
			buffer.PushBack(&message{Kind: QuoteCreatedMessageKind, Data: []byte("msg2")})
			buffer.PushBack(&message{Kind: QuoteCreatedMessageKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))

			m := buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg1")))
			Expect(buffer.Size()).To(Equal(2))

			m = buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg2")))
			Expect(buffer.Size()).To(Equal(1))

			m = buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg3")))
			Expect(buffer.Size()).To(Equal(0))
			Expect(buffer.head).To(BeNil())
			Expect(buffer.tail).To(BeNil())

			m = buffer.Pop()
			Expect(m).To(BeNil())
		})

		It("handles concurrent producers", func() {
			buffer := newBuffer()

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						buffer.PushBack(&message{Kind: QuoteCreatedMessageKind})
					}
				}()
			}
			wg.Wait()

			Expect(buffer.Size()).To(Equal(1000))

			popped := 0
			for buffer.Pop() != nil {
				popped++
			}
			Expect(popped).To(Equal(1000))
		})
	})
})
