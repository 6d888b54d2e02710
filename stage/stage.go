// Package stage implements the TMX → staging conversion: it filters a
// translation-unit stream down to one language pair and writes the
// three synchronized artifacts consumed by corpus indexing — a source
// staging file, a target staging file, and an alignment map — all
// joined by a contiguous translation-unit identifier starting at 1.
package stage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tmxtools/tmxkit/corpus"
	"github.com/tmxtools/tmxkit/langpair"
	"github.com/tmxtools/tmxkit/tmxfile"
	"github.com/tmxtools/tmxkit/tokenize"
)

// ErrStagingIO wraps failures to create or write a staging artifact.
// A failure mid-stream leaves an inconsistent triple; the caller must
// discard all three files and retry from scratch.
var ErrStagingIO = errors.New("staging write failed")

// ProgressInterval is the number of retained translation units between
// progress callbacks.
const ProgressInterval = 1000

// Options controls one staging run.
type Options struct {
	// Base is the corpus base name; corpus names are derived from it
	// and the language codes.
	Base string
	// Pair is the resolved source/target language pair.
	Pair langpair.Pair
	// SourceTokenizer and TargetTokenizer segment each side. A nil
	// tokenizer means whitespace splitting. The two sides are
	// independent: a TMX pair may carry one pre-tokenized side.
	SourceTokenizer tokenize.Func
	TargetTokenizer tokenize.Func
	// Progress, when set, is called with the running retained count
	// every ProgressInterval retained units. Purely observational.
	Progress func(retained int)
}

// Result reports what a staging run wrote.
type Result struct {
	// Retained is the number of translation units written, equal to
	// the highest identifier used.
	Retained int
	// Skipped is the number of units dropped for missing one of the
	// two selected languages. Skipped units consume no identifier.
	Skipped int
}

// Escape substitutes the two characters reserved by the staging block
// markup. This is the narrow staging policy, not XML escaping: no
// other characters are touched and no terminating semicolons are
// produced, so the substitution never collides with its own output.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt")
	s = strings.ReplaceAll(s, ">", "&gt")
	return s
}

// Export writes the staging triple for every translation unit that has
// text in both selected languages. Blocks and alignment-map records
// are emitted in document order with identifiers 1..Retained, no gaps.
func Export(tus []tmxfile.TU, opts Options, srcOut, tgtOut, mapOut io.Writer) (Result, error) {
	srcTok := opts.SourceTokenizer
	if srcTok == nil {
		srcTok = tokenize.Whitespace
	}
	tgtTok := opts.TargetTokenizer
	if tgtTok == nil {
		tgtTok = tokenize.Whitespace
	}

	src := bufio.NewWriter(srcOut)
	tgt := bufio.NewWriter(tgtOut)
	amap := bufio.NewWriter(mapOut)

	srcName := strings.ToUpper(corpus.Name(opts.Base, opts.Pair.Source))
	tgtName := strings.ToUpper(corpus.Name(opts.Base, opts.Pair.Target))
	fmt.Fprintf(amap, "%s\t%s\ttu\tid_{id}\n", srcName, tgtName)

	var res Result
	for _, tu := range tus {
		srcSeg, okSrc := tu[opts.Pair.Source]
		tgtSeg, okTgt := tu[opts.Pair.Target]
		if !okSrc || !okTgt {
			res.Skipped++
			continue
		}

		srcTokens, err := srcTok(Escape(srcSeg))
		if err != nil {
			return res, err
		}
		tgtTokens, err := tgtTok(Escape(tgtSeg))
		if err != nil {
			return res, err
		}

		res.Retained++
		id := res.Retained
		writeBlock(src, id, srcTokens)
		writeBlock(tgt, id, tgtTokens)
		fmt.Fprintf(amap, "id_%d\tid_%d\n", id, id)

		if opts.Progress != nil && id%ProgressInterval == 0 {
			opts.Progress(id)
		}
	}

	for _, w := range []*bufio.Writer{src, tgt, amap} {
		if err := w.Flush(); err != nil {
			return res, fmt.Errorf("%w: %v", ErrStagingIO, err)
		}
	}
	return res, nil
}

// writeBlock emits one staging block: identifier markers wrapping one
// token per line.
func writeBlock(w *bufio.Writer, id int, tokens []string) {
	fmt.Fprintf(w, "<tu id='%d'>\n", id)
	for _, tok := range tokens {
		fmt.Fprintln(w, tok)
	}
	fmt.Fprintln(w, "</tu>")
}

// ExportFiles runs Export against three freshly created files. On any
// failure the triple is inconsistent and should be discarded.
func ExportFiles(tus []tmxfile.TU, opts Options, srcPath, tgtPath, mapPath string) (Result, error) {
	var files []*os.File
	for _, path := range []string{srcPath, tgtPath, mapPath} {
		f, err := os.Create(path)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrStagingIO, err)
		}
		defer f.Close()
		files = append(files, f)
	}
	return Export(tus, opts, files[0], files[1], files[2])
}
