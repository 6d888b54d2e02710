// Package tmxfile implements reading and writing of TMX
// (Translation Memory eXchange) documents, the XML container format
// for aligned translation units.
package tmxfile

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// TU is one translation unit: a mapping from language code to the text
// segment in that language.
type TU map[string]string

// File represents a parsed TMX document.
type File struct {
	// SourceLang is the srclang attribute of the TMX header, if any.
	SourceLang string
	// TUs are the translation units in document order.
	TUs []TU

	langs []string
}

// Languages returns the distinct language codes present in the
// document, in order of first appearance (header srclang first when it
// also occurs in a translation unit).
func (f *File) Languages() []string {
	return f.langs
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// xml:lang attributes resolve against the predefined xml namespace;
// a bare lang attribute (older TMX exports) is accepted as a fallback.
type xmlTUV struct {
	XMLLang   string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	PlainLang string `xml:"lang,attr"`
	Seg       string `xml:"seg"`
}

func (v *xmlTUV) lang() string {
	if v.XMLLang != "" {
		return v.XMLLang
	}
	return v.PlainLang
}

// Parse reads a TMX document from a reader.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	seen := make(map[string]bool)

	dec := xml.NewDecoder(bufio.NewReader(r))
	var current TU

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing TMX: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "header":
				for _, a := range el.Attr {
					if a.Name.Local == "srclang" {
						f.SourceLang = a.Value
					}
				}
			case "tu":
				current = TU{}
			case "tuv":
				if current == nil {
					return nil, fmt.Errorf("parsing TMX: tuv outside tu")
				}
				var tuv xmlTUV
				if err := dec.DecodeElement(&tuv, &el); err != nil {
					return nil, fmt.Errorf("parsing TMX: %w", err)
				}
				lang := tuv.lang()
				if lang == "" {
					continue
				}
				current[lang] = tuv.Seg
				if !seen[lang] {
					seen[lang] = true
					f.langs = append(f.langs, lang)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "tu" && current != nil {
				f.TUs = append(f.TUs, current)
				current = nil
			}
		}
	}

	return f, nil
}

// ParseFile reads a TMX document from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Writer emits a TMX document incrementally: Begin, any number of
// AddTU calls, then End. The output is not valid until End returns.
type Writer struct {
	w     *bufio.Writer
	langs []string
	began bool
}

// NewWriter wraps an output stream in a TMX writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Begin writes the TMX preamble and header.
// srclang names the header source language.
func (t *Writer) Begin(toolName, toolVersion, srclang string) error {
	t.began = true
	fmt.Fprintf(t.w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(t.w, "<tmx version=\"1.4\">\n")
	fmt.Fprintf(t.w, "  <header creationtool=%q creationtoolversion=%q segtype=\"sentence\" o-tmf=\"plain\" adminlang=\"en\" srclang=%q datatype=\"plaintext\"/>\n",
		toolName, toolVersion, srclang)
	fmt.Fprintf(t.w, "  <body>\n")
	return nil
}

// AddTU writes one translation unit. Language variants are written in
// the order given; pass them ordered source-first.
func (t *Writer) AddTU(langs []string, tu TU) error {
	if !t.began {
		return fmt.Errorf("writing TMX: AddTU before Begin")
	}
	fmt.Fprintf(t.w, "    <tu>\n")
	for _, lang := range langs {
		seg, ok := tu[lang]
		if !ok {
			continue
		}
		fmt.Fprintf(t.w, "      <tuv xml:lang=%q><seg>%s</seg></tuv>\n", lang, escapeXML(seg))
	}
	fmt.Fprintf(t.w, "    </tu>\n")
	return nil
}

// End closes the document and flushes the underlying stream.
func (t *Writer) End() error {
	if !t.began {
		return fmt.Errorf("writing TMX: End before Begin")
	}
	fmt.Fprintf(t.w, "  </body>\n")
	fmt.Fprintf(t.w, "</tmx>\n")
	return t.w.Flush()
}

// escapeXML escapes segment text for element content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
