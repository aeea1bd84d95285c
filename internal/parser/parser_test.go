package parser

import (
	"reflect"
	"strings"
	"testing"

	"wikiexplorer/internal/core"
)

const octopusHTML = `<!DOCTYPE html>
<html><body>
<section data-mw-section-id="0"><p>The <b>octopus</b> is a soft-bodied mollusc.</p></section>
<section data-mw-section-id="1">
  <h2 id="Etymology">Etymology</h2>
  <p>From <a href="./Ancient_Greek" rel="mw:WikiLink">Ancient Greek</a>.<sup class="mw-ref reference">[1]</sup></p>
  <section data-mw-section-id="2">
    <h3 id="Plural">Plural</h3>
    <p>Octopuses is the most common form.</p>
  </section>
</section>
<section data-mw-section-id="3">
  <h2 id="Anatomy">Anatomy</h2>
  <p>Eight <a href="./Arm_(anatomy)">arms</a>.</p>
  <p>Three   hearts.</p>
  <table><tr><td>ignored</td></tr></table>
</section>
<section data-mw-section-id="4">
  <h2 id="Empty">Empty</h2>
  <ul><li>No paragraphs here</li></ul>
</section>
<section data-mw-section-id="5">
  <h2 id="References">References</h2>
  <p>Citation text</p>
</section>
</body></html>`

func TestParseSections(t *testing.T) {
	sections, err := NewParser(5).ParseSections(octopusHTML)
	if err != nil {
		t.Fatalf("ParseSections failed: %v", err)
	}

	var titles []string
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	expected := []string{"Etymology", "Plural", "Anatomy"}
	if !reflect.DeepEqual(titles, expected) {
		t.Fatalf("Expected sections %v, got %v", expected, titles)
	}

	if sections[0].Content != "From Ancient Greek." {
		t.Errorf("Expected reference markers stripped, got %q", sections[0].Content)
	}
	if !strings.Contains(sections[0].OriginalContent, `href="./Ancient_Greek"`) {
		t.Errorf("Original content should keep links, got %q", sections[0].OriginalContent)
	}
	if sections[2].Content != "Eight arms. Three hearts." {
		t.Errorf("Expected paragraphs joined with collapsed whitespace, got %q", sections[2].Content)
	}
	for _, s := range sections {
		if s.Summary != "" {
			t.Errorf("Parser should not set summaries, got %q", s.Summary)
		}
	}
}

func TestParseSectionsRespectsLimit(t *testing.T) {
	sections, err := NewParser(2).ParseSections(octopusHTML)
	if err != nil {
		t.Fatalf("ParseSections failed: %v", err)
	}
	if len(sections) != 2 {
		t.Errorf("Expected 2 sections, got %d", len(sections))
	}
}

func TestParseSectionsWrappedHeadings(t *testing.T) {
	html := `<div class="mw-heading mw-heading2"><h2>History</h2></div>
<p>First paragraph.</p>
<div class="mw-heading mw-heading3"><h3>Later</h3></div>
<p>Second paragraph.</p>`

	sections, err := NewParser(0).ParseSections(html)
	if err != nil {
		t.Fatalf("ParseSections failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].Content != "First paragraph." || sections[1].Content != "Second paragraph." {
		t.Errorf("Unexpected section contents: %+v", sections)
	}
}

func TestParseSectionsNoHeadings(t *testing.T) {
	sections, err := NewParser(5).ParseSections("<p>Just a stub.</p>")
	if err != nil {
		t.Fatalf("ParseSections failed: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("Expected no sections, got %d", len(sections))
	}
}

func TestExtractRelatedTitles(t *testing.T) {
	article := core.Article{
		Title: "Octopus",
		Sections: []core.Section{
			{
				Title: "Biology",
				OriginalContent: `<a href="./Cephalopod">cephalopods</a>
<a href="/wiki/Squid">squid</a>
<a href="https://en.wikipedia.org/wiki/Giant_Pacific_octopus">giant</a>
<a href="./File:Octopus.jpg">image</a>
<a href="#cite_note-1">[1]</a>
<a href="./Octopus">self</a>
<a href="./Ox">ox</a>
<a href="https://example.com/elsewhere">external</a>
<a href="./Cephalopod">again</a>
<a href="./Caf%C3%A9_culture">café</a>`,
			},
		},
	}

	titles := NewParser(5).ExtractRelatedTitles(article, 0)
	expected := []string{"Cephalopod", "Squid", "Giant Pacific octopus", "Café culture"}
	if !reflect.DeepEqual(titles, expected) {
		t.Errorf("Expected %v, got %v", expected, titles)
	}
}

func TestExtractRelatedTitlesLimit(t *testing.T) {
	article := core.Article{
		Title: "Octopus",
		Sections: []core.Section{
			{OriginalContent: `<a href="./Alpha">a</a><a href="./Bravo">b</a>`},
			{OriginalContent: `<a href="./Charlie">c</a>`},
		},
	}

	titles := NewParser(5).ExtractRelatedTitles(article, 2)
	if !reflect.DeepEqual(titles, []string{"Alpha", "Bravo"}) {
		t.Errorf("Expected first two titles, got %v", titles)
	}
}
