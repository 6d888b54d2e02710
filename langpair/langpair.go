// Package langpair resolves the ordered (source, target) language pair
// for a conversion run from the languages declared in a TMX document
// and optional user-supplied hints.
package langpair

import (
	"errors"
	"fmt"
)

// ErrUnavailableLanguage is returned when a requested language is not
// declared by the document.
var ErrUnavailableLanguage = errors.New("language not present in document")

// ErrAmbiguousLanguagePair is returned when no unique pair can be
// resolved from the declared languages and the supplied hints.
var ErrAmbiguousLanguagePair = errors.New("cannot resolve a unique language pair")

// Pair is an ordered source/target language pair.
type Pair struct {
	Source string
	Target string
}

// Resolve picks exactly one ordered pair from the languages declared in
// the document (in declared order) and the optional hints, or fails.
//
// Rules:
//   - A hint naming a language absent from the document fails with
//     ErrUnavailableLanguage.
//   - Both hints present and valid: returned unchanged.
//   - One hint present and exactly two declared languages: the other
//     declared language is inferred.
//   - No hints and exactly two declared languages: declared order wins.
//   - Everything else fails with ErrAmbiguousLanguagePair; the resolver
//     never guesses among three or more candidates.
func Resolve(available []string, fromHint, toHint string) (Pair, error) {
	declared := make(map[string]bool, len(available))
	for _, lang := range available {
		declared[lang] = true
	}

	for _, hint := range []string{fromHint, toHint} {
		if hint != "" && !declared[hint] {
			return Pair{}, fmt.Errorf("%w: %s", ErrUnavailableLanguage, hint)
		}
	}

	switch {
	case fromHint != "" && toHint != "":
		return Pair{Source: fromHint, Target: toHint}, nil

	case fromHint != "" && len(available) == 2:
		return Pair{Source: fromHint, Target: other(available, fromHint)}, nil

	case toHint != "" && len(available) == 2:
		return Pair{Source: other(available, toHint), Target: toHint}, nil

	case fromHint == "" && toHint == "" && len(available) == 2:
		return Pair{Source: available[0], Target: available[1]}, nil
	}

	return Pair{}, fmt.Errorf("%w: %d languages declared, hints (%q, %q)",
		ErrAmbiguousLanguagePair, len(available), fromHint, toHint)
}

// other returns the member of a two-language set that is not lang.
func other(available []string, lang string) string {
	for _, l := range available {
		if l != lang {
			return l
		}
	}
	return lang
}
