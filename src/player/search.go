package player

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"webvlc/src/media"
)

var ErrEmptyQuery = errors.New("query is empty")

// Attributes of an entry that can be searched, see EntryAttr.
var entryAttrs = map[string]bool{
	"name": true,
	"ext":  true,
	"kind": true,
}

// EntryAttr returns the named attribute of an entry as a string.
func EntryAttr(entry Entry, attr string) (string, bool) {
	switch attr {
	case "name":
		return entry.Name, true
	case "ext":
		return media.Extension(entry.Name), true
	case "kind":
		return media.MediaKind(entry.Name).String(), true
	default:
		return "", false
	}
}

type SearchMatch struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchResult is an entry that matched a query together with its position in
// the playlist and the matched parts of its attributes.
type SearchResult struct {
	Index   int                      `json:"index"`
	Entry   Entry                    `json:"entry"`
	Matches map[string][]SearchMatch `json:"matches"`
}

func (sr *SearchResult) addMatch(attr string, start, end int) {
	sr.Matches[attr] = append(sr.Matches[attr], SearchMatch{Start: start, End: end})
}

func (sr SearchResult) NumMatches() (n int) {
	for _, attr := range sr.Matches {
		n += len(attr)
	}
	return
}

type SearchQuery struct {
	patterns map[string][]*regexp.Regexp
}

var (
	regexControlRe = regexp.MustCompile(`([\.\^\$\?\+\[\]\{\}\(\)\|\\])`)
	escapedWhiteRe = regexp.MustCompile(`\\(\s)`)
	queryRe        = regexp.MustCompile(`(?:(\w+):)?((?:(?:\\\s)|[^:\s])+)`)
)

// CompileSearchQuery compiles a search query so that it may be used to select
// entries. The query is made up of keywords of the following format:
//
//	[attribute:]<value>
//
// An entry should contain all the keywords to pass selection. Keywords without
// an attribute are matched against the name. Asterisks are wildcards and a
// literal whitespace character may be specified by a leading backslash.
//
// The query could look something like this:
//
//	live 199* kind:video ext:mkv
func CompileSearchQuery(query string) (*SearchQuery, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	matches := queryRe.FindAllStringSubmatch(query, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("query does not match the expected format: %q", query)
	}

	compiled := &SearchQuery{patterns: map[string][]*regexp.Regexp{}}
	for _, group := range matches {
		attr := group[1]
		if attr == "" {
			attr = "name"
		} else if !entryAttrs[attr] {
			continue
		}

		value := group[2]
		value = escapedWhiteRe.ReplaceAllString(value, "$1")
		value = regexControlRe.ReplaceAllString(value, `\$1`)
		value = strings.ReplaceAll(value, "*", ".*")
		re, err := regexp.Compile("(?i)" + value)
		if err != nil {
			return nil, fmt.Errorf("unable to compile %q for attribute %q: %v", value, attr, err)
		}
		compiled.patterns[attr] = append(compiled.patterns[attr], re)
	}
	return compiled, nil
}

func (sq *SearchQuery) Matches(index int, entry Entry) (SearchResult, bool) {
	if sq == nil || len(sq.patterns) == 0 {
		return SearchResult{}, false
	}
	result := SearchResult{
		Index:   index,
		Entry:   entry,
		Matches: map[string][]SearchMatch{},
	}
	for attr, patterns := range sq.patterns {
		val, _ := EntryAttr(entry, attr)
		for _, re := range patterns {
			match := re.FindStringIndex(val)
			if match == nil {
				return SearchResult{}, false
			}
			result.addMatch(attr, match[0], match[1])
		}
	}
	return result, true
}

// Search compiles the query and filters the playlist. The result is sorted by
// the number of matches in descending order, ties keep their playlist order.
func Search(playlist []Entry, query string) ([]SearchResult, error) {
	compiled, err := CompileSearchQuery(query)
	if err != nil {
		return nil, err
	}
	results := []SearchResult{}
	for i, entry := range playlist {
		if res, ok := compiled.Matches(i, entry); ok {
			results = append(results, res)
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].NumMatches() > results[b].NumMatches()
	})
	return results, nil
}
