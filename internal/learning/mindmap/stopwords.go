package mindmap

var stopwords = func() map[string]struct{} {
	words := []string{
		"about", "above", "across", "after", "again", "against", "all", "almost", "along", "also",
		"although", "always", "among", "and", "another", "any", "are", "around", "because", "been",
		"before", "being", "below", "between", "both", "but", "can", "cannot", "could", "did",
		"does", "doing", "done", "down", "during", "each", "either", "else", "enough", "etc",
		"even", "ever", "every", "few", "for", "from", "further", "get", "gets", "given",
		"had", "has", "have", "having", "her", "here", "hers", "herself", "him", "himself",
		"his", "how", "however", "into", "its", "itself", "just", "least", "less", "like",
		"made", "make", "makes", "many", "may", "might", "more", "most", "much", "must",
		"myself", "neither", "never", "nor", "not", "now", "off", "often", "once", "one",
		"only", "other", "others", "our", "ours", "ourselves", "out", "over", "own", "per",
		"rather", "same", "several", "shall", "she", "should", "since", "some", "such", "than",
		"that", "the", "their", "theirs", "them", "themselves", "then", "there", "therefore", "these",
		"they", "this", "those", "though", "through", "thus", "too", "two", "under", "until",
		"upon", "use", "used", "uses", "using", "very", "via", "was", "were", "what",
		"when", "where", "whether", "which", "while", "who", "whom", "whose", "why", "will",
		"with", "within", "without", "would", "yet", "you", "your", "yours", "yourself", "yourselves",
		"able", "based", "called", "first", "second", "third", "new", "well", "way", "ways",
		"example", "examples", "include", "includes", "including", "known", "let", "see", "show", "shows",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
