package textindex

import "strings"

// stopwords holds, per language, the words PostgreSQL's snowball
// dictionaries drop from both documents and queries.
var stopwords = map[string]map[string]bool{
	"english": wordSet(`
		i me my myself we our ours ourselves you your yours yourself
		yourselves he him his himself she her hers herself it its itself
		they them their theirs themselves what which who whom this that
		these those am is are was were be been being have has had having
		do does did doing a an the and but if or because as until while of
		at by for with about against between into through during before
		after above below to from up down in out on off over under again
		further then once here there when where why how all any both each
		few more most other some such no nor not only own same so than too
		very s t can will just don should now`),
}

func wordSet(list string) map[string]bool {
	words := strings.Fields(list)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// DropStopwords returns the query without the words language ignores. A
// query made only of stopwords becomes Empty.
func (q Query) DropStopwords(language string) Query {
	set := stopwords[strings.ToLower(language)]
	if len(set) == 0 {
		return q
	}
	out := Query{variant: q.variant}
	for i, folded := range q.Folded {
		if set[folded] {
			continue
		}
		out.Terms = append(out.Terms, q.Terms[i])
		out.Folded = append(out.Folded, folded)
	}
	return out
}
