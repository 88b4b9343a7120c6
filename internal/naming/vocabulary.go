package naming

// Vocabulary is the closed list of trading and technical-indicator terms
// recognized in strategy descriptions. Position is priority: when more
// terms match than an identifier can hold, earlier entries win.
var Vocabulary = []string{
	"rsi", "macd", "ema", "sma", "bollinger", "momentum", "scalping",
	"arbitrage", "grid", "dca", "swing", "day", "trend", "reversal",
	"breakout", "support", "resistance", "volume", "volatility", "stochastic",
	"fibonacci", "pivot", "moving", "average", "crossover", "divergence",
}

// stopwords are skipped when filling identifiers from free text.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "to": {},
	"in": {}, "on": {}, "at": {}, "for": {}, "with": {}, "by": {}, "from": {},
	"is": {}, "it": {}, "that": {}, "this": {}, "when": {}, "then": {},
	"if": {}, "as": {}, "be": {}, "using": {}, "use": {}, "based": {},
	"build": {}, "create": {}, "make": {}, "me": {}, "my": {}, "please": {},
	"strategy": {}, "strategies": {}, "trading": {}, "trade": {}, "algo": {},
	"algorithm": {}, "bot": {}, "new": {}, "simple": {},
}

var vocabularyRank = func() map[string]int {
	rank := make(map[string]int, len(Vocabulary))
	for i, term := range Vocabulary {
		rank[term] = i
	}
	return rank
}()

// IsStopword reports whether token is ignored when filling identifiers.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
