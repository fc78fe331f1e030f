package reasoning_test

import (
	"encoding/json"

	. "github.com/mudler/thinkstream/pkg/reasoning"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ids(formats []TagFormat) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, f.ID)
	}
	return out
}

var _ = Describe("Registry", func() {
	It("holds the built-in paired formats in priority order", func() {
		Expect(ids(DefaultRegistry().Paired())).To(Equal([]string{
			"think", "analysis", "thought", "final", "scratchpad", "chain_of_thought", "reasoning",
		}))
		for _, f := range DefaultRegistry().Paired() {
			Expect(f.Kind).To(Equal(FormatTag))
			Expect(f.Dynamic).To(BeFalse())
		}
	})

	It("exposes the prefix and no-marker definitions", func() {
		prefix := DefaultRegistry().Prefix()
		Expect(prefix.ID).To(Equal("THINKING"))
		Expect(prefix.Open).To(Equal("//THINKING:"))
		Expect(prefix.Close).To(BeEmpty())
		Expect(prefix.Kind).To(Equal(FormatPrefix))

		noMarker := DefaultRegistry().NoMarker()
		Expect(noMarker.Open).To(BeEmpty())
		Expect(noMarker.Close).To(Equal("{"))
		Expect(noMarker.Kind).To(Equal(FormatNoMarker))
	})

	It("lists the prefix after the paired formats", func() {
		formats := DefaultRegistry().Formats()
		Expect(formats).To(HaveLen(8))
		Expect(formats[7].Kind).To(Equal(FormatPrefix))
	})

	It("does not leak its internal slice", func() {
		paired := DefaultRegistry().Paired()
		paired[0].ID = "changed"
		Expect(DefaultRegistry().Paired()[0].ID).To(Equal("think"))
	})

	Context("with configured pairs", func() {
		It("appends new pairs and derives their ID from the tag name", func() {
			r := NewRegistry(WithTagPairs(TagPair{Start: "<plan>", End: "</plan>"}))
			paired := r.Paired()
			Expect(paired).To(HaveLen(8))
			Expect(paired[7].ID).To(Equal("plan"))
		})

		It("uses a positional ID when the marker is not a plain tag", func() {
			r := NewRegistry(WithTagPairs(TagPair{Start: "<<", End: ">>"}))
			Expect(r.Paired()[7].ID).To(Equal("custom_0"))
		})

		It("never replaces a built-in format", func() {
			r := NewRegistry(WithTagPairs(
				TagPair{ID: "think", Start: "<x>", End: "</x>"},
				TagPair{Start: "<think>", End: "</other>"},
			))
			Expect(r.Paired()).To(HaveLen(7))
			Expect(r.Paired()[0].Close).To(Equal("</think>"))
		})

		It("skips pairs with an empty marker", func() {
			r := NewRegistry(WithTagPairs(TagPair{Start: "<x>"}))
			Expect(r.Paired()).To(HaveLen(7))
		})

		It("builds the same registry from a Config", func() {
			disabled := true
			r := NewRegistry(Config{
				TagPairs:           []TagPair{{Start: "<plan>", End: "</plan>"}},
				Prefix:             "#R:",
				DisableDynamicTags: &disabled,
			}.Options()...)
			Expect(r.Paired()).To(HaveLen(8))
			Expect(r.Prefix().Open).To(Equal("#R:"))
			Expect(r.DynamicTagsEnabled()).To(BeFalse())
		})
	})
})

var _ = Describe("DiscoverDynamicTags", func() {
	It("finds matching pairs once each, in order of appearance", func() {
		found := DiscoverDynamicTags(`<step n="1">a</step><note>b</note><step>c</step>`, nil)
		Expect(ids(found)).To(Equal([]string{"step", "note"}))
		Expect(found[0].Open).To(Equal("<step>"))
		Expect(found[0].Close).To(Equal("</step>"))
		Expect(found[0].Dynamic).To(BeTrue())
	})

	It("skips claimed names", func() {
		found := DiscoverDynamicTags(`<step>a</step><note>b</note>`, map[string]struct{}{"step": {}})
		Expect(ids(found)).To(Equal([]string{"note"}))
	})

	It("ignores malformed pairs", func() {
		Expect(DiscoverDynamicTags("<open>never closed", nil)).To(BeEmpty())
		Expect(DiscoverDynamicTags("<a>x</b>", nil)).To(BeEmpty())
		Expect(DiscoverDynamicTags("<1abc>x</1abc>", nil)).To(BeEmpty())
		Expect(DiscoverDynamicTags("<br/> text </br>", nil)).To(BeEmpty())
		Expect(DiscoverDynamicTags("", nil)).To(BeEmpty())
	})

	It("accepts names with digits, dashes and underscores", func() {
		found := DiscoverDynamicTags("<inner-monologue_2>x</inner-monologue_2>", nil)
		Expect(ids(found)).To(Equal([]string{"inner-monologue_2"}))
	})

	It("never reports the registry's own tags", func() {
		found := DefaultRegistry().DiscoverDynamicTags("<think>x</think><plan>y</plan>", nil)
		Expect(ids(found)).To(Equal([]string{"plan"}))
	})

	It("reports nothing when discovery is disabled", func() {
		r := NewRegistry(WithoutDynamicTags())
		Expect(r.DiscoverDynamicTags("<plan>y</plan>", nil)).To(BeNil())
	})
})

var _ = Describe("FormatKind", func() {
	It("marshals as its name", func() {
		b, err := json.Marshal(Block{Content: "c", Kind: FormatNoMarker, FormatID: "no_marker"})
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal(`{"content":"c","kind":"NO_MARKER","format_id":"no_marker"}`))

		var k FormatKind
		Expect(k.UnmarshalText([]byte("prefix"))).To(Succeed())
		Expect(k).To(Equal(FormatPrefix))
	})
})
