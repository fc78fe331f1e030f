package reasoning_test

import (
	. "github.com/mudler/thinkstream/pkg/reasoning"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractAll", func() {
	Context("when there is nothing to extract", func() {
		It("returns nothing for empty input", func() {
			Expect(ExtractAll("")).To(BeEmpty())
			Expect(ExtractAll("  \n\t ")).To(BeEmpty())
		})

		It("returns nothing for a pure JSON payload", func() {
			Expect(ExtractAll(`{"a": 1, "b": [1, 2]}`)).To(BeEmpty())
			Expect(ExtractAll("{\n  \"a\": 1\n}\n")).To(BeEmpty())
		})

		It("drops blocks with no content", func() {
			Expect(ExtractAll(`<think></think>{"a":1}`)).To(BeEmpty())
		})
	})

	Context("paired formats", func() {
		It("extracts a block before the payload", func() {
			Expect(ExtractAll("<think>first</think>\n{\"a\":1}")).To(Equal([]Block{
				{Content: "first", Kind: FormatTag, FormatID: "think"},
			}))
		})

		It("keeps line breaks inside multi-line blocks", func() {
			blocks := ExtractAll("<think>\nline one\nline two\n</think>\n{\"a\":1}")
			Expect(blocks).To(HaveLen(1))
			Expect(blocks[0].Content).To(Equal("line one\nline two"))
		})

		It("orders blocks by position, not by table priority", func() {
			blocks := ExtractAll("[REASONING]r1[/REASONING]\n<think>t2</think>")
			Expect(blocks).To(Equal([]Block{
				{Content: "r1", Kind: FormatTag, FormatID: "reasoning"},
				{Content: "t2", Kind: FormatTag, FormatID: "think"},
			}))
		})

		It("extracts every occurrence of a format", func() {
			blocks := ExtractAll("<think>a</think> and <think>b</think>")
			Expect(blocks).To(HaveLen(2))
			Expect(blocks[0].Content).To(Equal("a"))
			Expect(blocks[1].Content).To(Equal("b"))
		})

		It("does not extract a block nested in an earlier claim", func() {
			blocks := ExtractAll("<think>outer <analysis>inner</analysis></think>")
			Expect(blocks).To(Equal([]Block{
				{Content: "outer <analysis>inner</analysis>", Kind: FormatTag, FormatID: "think"},
			}))
		})
	})

	Context("dynamic tags", func() {
		It("extracts undeclared tag pairs", func() {
			Expect(ExtractAll("<plan>do x</plan>\n{\"a\":1}")).To(Equal([]Block{
				{Content: "do x", Kind: FormatTag, FormatID: "plan"},
			}))
		})

		It("accepts attributes on the opening tag", func() {
			blocks := ExtractAll(`<step index="1">check input</step>`)
			Expect(blocks).To(HaveLen(1))
			Expect(blocks[0].FormatID).To(Equal("step"))
			Expect(blocks[0].Content).To(Equal("check input"))
		})

		It("never extracts a predefined tag twice", func() {
			blocks := ExtractAll("<think>a</think>\n<think>b</think>")
			Expect(blocks).To(HaveLen(2))
			for _, b := range blocks {
				Expect(b.FormatID).To(Equal("think"))
			}
		})

		It("skips dynamic pairs inside a claimed block", func() {
			blocks := ExtractAll("<think><step>a</step></think>")
			Expect(blocks).To(HaveLen(1))
			Expect(blocks[0].FormatID).To(Equal("think"))
		})

		It("leaves undeclared pairs alone when discovery is disabled", func() {
			r := NewRegistry(WithoutDynamicTags())
			Expect(r.ExtractAll("<plan>do x</plan>\n{\"a\":1}")).To(Equal([]Block{
				{Content: "<plan>do x</plan>", Kind: FormatNoMarker, FormatID: "no_marker"},
			}))
		})
	})

	Context("prefix lines", func() {
		It("yields one block per line, never merged", func() {
			Expect(ExtractAll("//THINKING: abc\n//THINKING: def\n{\"a\":1}")).To(Equal([]Block{
				{Content: "abc", Kind: FormatPrefix, FormatID: "THINKING"},
				{Content: "def", Kind: FormatPrefix, FormatID: "THINKING"},
			}))
		})

		It("handles CRLF line endings", func() {
			blocks := ExtractAll("//THINKING: abc\r\n{\"a\":1}")
			Expect(blocks).To(Equal([]Block{
				{Content: "abc", Kind: FormatPrefix, FormatID: "THINKING"},
			}))
		})
	})

	Context("unmarked reasoning", func() {
		It("takes the prose before the payload", func() {
			Expect(ExtractAll("Let me think about it.\nOK.\n{\"answer\": 42}")).To(Equal([]Block{
				{Content: "Let me think about it.\nOK.", Kind: FormatNoMarker, FormatID: "no_marker"},
			}))
		})

		It("takes everything when there is no payload", func() {
			blocks := ExtractAll("only prose here")
			Expect(blocks).To(HaveLen(1))
			Expect(blocks[0].Content).To(Equal("only prose here"))
		})

		It("strips an opening code fence", func() {
			blocks := ExtractAll("Here is the result:\n```json\n{\"a\":1}\n```")
			Expect(blocks).To(Equal([]Block{
				{Content: "Here is the result:", Kind: FormatNoMarker, FormatID: "no_marker"},
			}))
		})

		It("records nothing when only a fence precedes the payload", func() {
			Expect(ExtractAll("```json\n{\"a\":1}\n```")).To(BeEmpty())
		})

		It("keeps unterminated markup verbatim", func() {
			Expect(ExtractAll("<think>never closed\n{\"a\":1}")).To(Equal([]Block{
				{Content: "<think>never closed", Kind: FormatNoMarker, FormatID: "no_marker"},
			}))
		})

		It("ignores braces inside claimed blocks", func() {
			blocks := ExtractAll("<think>{\"inner\":1}</think>\nprose {\"a\":1}")
			Expect(blocks).To(Equal([]Block{
				{Content: `{"inner":1}`, Kind: FormatTag, FormatID: "think"},
				{Content: "prose", Kind: FormatNoMarker, FormatID: "no_marker"},
			}))
		})
	})

	Context("mixed formats", func() {
		It("orders every kind by source position", func() {
			blocks := ExtractAll("Intro text\n<think>t</think>\n//THINKING: p\n{\"x\":1}")
			Expect(blocks).To(Equal([]Block{
				{Content: "Intro text", Kind: FormatNoMarker, FormatID: "no_marker"},
				{Content: "t", Kind: FormatTag, FormatID: "think"},
				{Content: "p", Kind: FormatPrefix, FormatID: "THINKING"},
			}))
		})

		It("places trailing prose after the blocks before it", func() {
			blocks := ExtractAll("<think>t</think>\nthen prose\n{\"x\":1}")
			Expect(blocks).To(Equal([]Block{
				{Content: "t", Kind: FormatTag, FormatID: "think"},
				{Content: "then prose", Kind: FormatNoMarker, FormatID: "no_marker"},
			}))
		})
	})
})

var _ = Describe("Split", func() {
	It("separates the reasoning from the payload", func() {
		reasoning, cleaned := Split("<think>why</think>\n{\"a\":1}")
		Expect(reasoning).To(Equal("why"))
		Expect(cleaned).To(Equal(`{"a":1}`))
	})

	It("joins several blocks with a blank line", func() {
		reasoning, cleaned := Split("<think>a</think>\n//THINKING: b\nprose\n{\"k\":2}")
		Expect(reasoning).To(Equal("a\n\nb\n\nprose"))
		Expect(cleaned).To(Equal(`{"k":2}`))
	})

	It("returns the payload untouched when there is no reasoning", func() {
		reasoning, cleaned := Split(`{"a": 1}`)
		Expect(reasoning).To(BeEmpty())
		Expect(cleaned).To(Equal(`{"a": 1}`))
	})

	It("handles empty input", func() {
		reasoning, cleaned := Split("")
		Expect(reasoning).To(BeEmpty())
		Expect(cleaned).To(BeEmpty())
	})
})

var _ = Describe("Analyze", func() {
	DescribeTable("agrees with ExtractAll and Split",
		func(text string) {
			a := Analyze(text)
			reasoning, cleaned := Split(text)
			Expect(a.Blocks).To(Equal(ExtractAll(text)))
			Expect(a.Reasoning).To(Equal(reasoning))
			Expect(a.Content).To(Equal(cleaned))
		},
		Entry("empty", ""),
		Entry("pure JSON", `{"a": 1}`),
		Entry("mixed", "<think>a</think>\n//THINKING: b\nprose\n{\"k\":2}"),
		Entry("unterminated", "<think>never closed\n{\"k\":2}"),
	)

	It("returns blocks, reasoning and content from one pass", func() {
		a := DefaultRegistry().Analyze("<analysis>why</analysis>\n```json\n{\"a\":1}")
		Expect(a.Blocks).To(Equal([]Block{{Content: "why", Kind: FormatTag, FormatID: "analysis"}}))
		Expect(a.Reasoning).To(Equal("why"))
		Expect(a.Content).To(Equal(`{"a":1}`))
	})
})
