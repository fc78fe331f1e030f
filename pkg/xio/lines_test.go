package xio_test

import (
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/mudler/thinkstream/pkg/xio"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

var _ = Describe("Lines", func() {
	It("yields every line without its ending", func() {
		var lines []string
		for line, err := range Lines(context.Background(), strings.NewReader("a\r\nb\n\nc")) {
			Expect(err).ToNot(HaveOccurred())
			lines = append(lines, line)
		}
		Expect(lines).To(Equal([]string{"a", "b", "", "c"}))
	})

	It("stops when the consumer stops", func() {
		count := 0
		for range Lines(context.Background(), strings.NewReader("a\nb\nc\n")) {
			count++
			break
		}
		Expect(count).To(Equal(1))
	})

	It("yields read errors", func() {
		var got error
		for _, err := range Lines(context.Background(), failingReader{}) {
			got = err
		}
		Expect(got).To(MatchError("boom"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var got error
		for _, err := range Lines(ctx, strings.NewReader("a\nb\n")) {
			got = err
		}
		Expect(got).To(MatchError(context.Canceled))
	})

	It("stops reading when cancelled mid-stream", func() {
		ctx, cancel := context.WithCancel(context.Background())
		pr, pw := io.Pipe()
		go func() {
			defer GinkgoRecover()
			_, _ = pw.Write([]byte("first\n"))
			cancel()
			_, _ = pw.Write([]byte("second\n"))
			pw.Close()
		}()

		var lines []string
		var got error
		for line, err := range Lines(ctx, pr) {
			if err != nil {
				got = err
				break
			}
			lines = append(lines, line)
		}
		pr.Close()
		Expect(lines).To(ContainElement("first"))
		Expect(lines).ToNot(ContainElement("second"))
		Expect(got).To(MatchError(context.Canceled))
	})
})
