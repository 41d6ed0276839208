package teimeta

import (
	"reflect"
	"testing"

	"github.com/emholm/standoff/core/annotation"
)

const sampleHeader = `<text>before</text>
<teiHeader>
  <fileDesc>
    <titleStmt>
      <title> Dalins Argus </title>
      <author>Olof von Dalin</author>
    </titleStmt>
    <publicationStmt>
      <publisher>Språkbanken</publisher>
      <date>1754</date>
    </publicationStmt>
  </fileDesc>
  <profileDesc>
    <langUsage>
      <language ident="sv">Swedish</language>
    </langUsage>
  </profileDesc>
</teiHeader>
<text>after</text>`

func TestExtract(t *testing.T) {
	m, err := Extract(sampleHeader, "teiheader")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := &Metadata{
		Title:     "Dalins Argus",
		Author:    "Olof von Dalin",
		Publisher: "Språkbanken",
		Date:      "1754",
		Language:  "sv",
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Extract = %+v, want %+v", m, want)
	}
}

func TestExtractPartialHeader(t *testing.T) {
	m, err := Extract(`<teiHeader><fileDesc><titleStmt><title>Bara titel</title></titleStmt></fileDesc></teiHeader>`, "teiheader")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if m.Title != "Bara titel" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Author != "" || m.Publisher != "" || m.Date != "" || m.Language != "" {
		t.Errorf("missing fields not empty: %+v", m)
	}
}

func TestExtractLanguageText(t *testing.T) {
	m, err := Extract(`<teiHeader><langUsage><language>svenska</language></langUsage></teiHeader>`, "teiheader")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if m.Language != "svenska" {
		t.Errorf("Language = %q, want element text fallback", m.Language)
	}
}

func TestExtractErrors(t *testing.T) {
	if _, err := Extract("<text>no header here</text>", "teiheader"); err == nil {
		t.Error("Extract without header succeeded")
	}
	if _, err := Extract("<teiHeader><title>x</title>", "teiheader"); err == nil {
		t.Error("Extract with unclosed header succeeded")
	}
}

func TestEntries(t *testing.T) {
	m := &Metadata{Title: "T", Date: "1900"}
	got := m.Entries()
	want := []annotation.Entry{
		{Key: "title", Value: "T"},
		{Key: "date", Value: "1900"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %v, want %v", got, want)
	}

	if entries := new(Metadata).Entries(); entries != nil {
		t.Errorf("empty metadata produced entries: %v", entries)
	}
}
