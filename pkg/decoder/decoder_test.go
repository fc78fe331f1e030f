package decoder_test

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"
	. "github.com/mudler/thinkstream/pkg/decoder"
	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type answer struct {
	Answer int    `json:"answer"`
	Unit   string `json:"unit,omitempty"`
}

var _ = Describe("JSON", func() {
	It("decodes a line into the target type", func() {
		v, err := JSON[answer]()(`  {"answer": 42, "unit": "m"}  `)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(answer{Answer: 42, Unit: "m"}))
	})

	It("rejects malformed JSON", func() {
		_, err := JSON[answer]()(`{answer: 42}`)
		Expect(errors.Is(err, ErrInvalidJSON)).To(BeTrue())
	})

	It("rejects JSON of the wrong shape", func() {
		_, err := JSON[answer]()(`{"answer": "forty-two"}`)
		Expect(errors.Is(err, ErrInvalidJSON)).To(BeTrue())
	})

	It("decodes generic objects", func() {
		v, err := Map()(`{"a": [1, 2]}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(HaveKey("a"))
	})
})

var _ = Describe("Schema", func() {
	var schema *jsonschema.Schema

	BeforeEach(func() {
		schema = &jsonschema.Schema{
			Type:     "object",
			Required: []string{"answer"},
			Properties: map[string]*jsonschema.Schema{
				"answer": {Type: "integer"},
			},
		}
	})

	It("accepts payloads matching the schema", func() {
		decode, err := Schema[answer](schema)
		Expect(err).ToNot(HaveOccurred())
		v, err := decode(`{"answer": 7}`)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Answer).To(Equal(7))
	})

	It("rejects payloads violating the schema", func() {
		decode, err := Schema[answer](schema)
		Expect(err).ToNot(HaveOccurred())
		_, err = decode(`{"unit": "m"}`)
		Expect(errors.Is(err, ErrSchemaMismatch)).To(BeTrue())
	})

	It("infers the schema from the target type", func() {
		decode, err := For[answer]()
		Expect(err).ToNot(HaveOccurred())
		_, err = decode(`{"answer": 1}`)
		Expect(err).ToNot(HaveOccurred())
		_, err = decode(`{"answer": "one"}`)
		Expect(err).To(HaveOccurred())
	})

	It("loads a schema from disk", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "schema.json")
		Expect(os.WriteFile(path, []byte(`{"type":"object","required":["answer"]}`), 0o644)).To(Succeed())

		decode, err := FromFile(path)
		Expect(err).ToNot(HaveOccurred())
		_, err = decode(`{"answer": 1}`)
		Expect(err).ToNot(HaveOccurred())
		_, err = decode(`{"other": 1}`)
		Expect(errors.Is(err, ErrSchemaMismatch)).To(BeTrue())
	})

	It("fails on a missing schema file", func() {
		_, err := FromFile(filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("with the stream pipeline", func() {
	It("turns schema violations into reasoning in resilient mode", func() {
		decode, err := For[answer]()
		Expect(err).ToNot(HaveOccurred())

		events, err := stream.Collect(stream.New(decode).ClassifyText("<think>hmm</think>\n{\"answer\": \"x\"}\n{\"answer\": 3}\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(events).To(HaveLen(3))
		Expect(events[1].Kind).To(Equal(stream.KindReasoning))
		Expect(events[1].State).To(Equal(reasoning.StateContinuation))
		Expect(events[2].Item).To(Equal(answer{Answer: 3}))
	})
})
