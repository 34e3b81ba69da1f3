package peg

// parseCache is the packrat memo table for a single Parse call: effective
// rule name to starting index to evaluation result. It is never shared
// across calls. It also tracks the current rule-to-rule recursion depth
// against the Grammar's configured CallstackLimit.
type parseCache struct {
	buckets map[string]map[int]evalResult
	depth   int
	limit   int // <= 0 means unlimited
}

func newParseCache(limit int) *parseCache {
	return &parseCache{buckets: make(map[string]map[int]evalResult), limit: limit}
}

// enterRule bumps the recursion depth, panicking with errorCallstackOverflow
// if the configured limit is exceeded; Grammar.Parse recovers this at the
// top. Non-recursive evaluation paths (everything except rule-to-rule calls
// through RuleReference) never call this, so the depth tracks grammar
// recursion specifically, not Go's own call stack.
func (c *parseCache) enterRule() {
	c.depth++
	if c.limit > 0 && c.depth > c.limit {
		panic(errorCallstackOverflow)
	}
}

func (c *parseCache) leaveRule() {
	c.depth--
}

func (c *parseCache) lookup(name string, index int) (evalResult, bool) {
	bucket, ok := c.buckets[name]
	if !ok {
		return evalResult{}, false
	}
	result, ok := bucket[index]
	return result, ok
}

func (c *parseCache) store(name string, index int, result evalResult) {
	bucket, ok := c.buckets[name]
	if !ok {
		bucket = make(map[int]evalResult)
		c.buckets[name] = bucket
	}
	bucket[index] = result
}

// Rule is a named, immutable wrapper around an Expression. Two kinds exist,
// classified once at grammar build time: plain memoized rules and
// left-recursive rules evaluated with Warth's seed-and-grow algorithm.
type Rule interface {
	Name() string
	Expression() Expression
	Parse(text string, index int, cache *parseCache, ruleName *string) evalResult
}

// ruleCell is the indirection RuleReference resolves through: rules may
// reference each other cyclically, so every rule name gets a cell up front
// and the concrete Rule is installed into it only after every rule's
// Expression has been built.
type ruleCell struct {
	rule Rule
}

func effectiveName(ruleName *string, own string) *string {
	if ruleName != nil {
		return ruleName
	}
	return &own
}

// nonLeftRecursiveRule evaluates once per (name, index) and memoizes the
// result.
type nonLeftRecursiveRule struct {
	name string
	expr Expression
}

func (r *nonLeftRecursiveRule) Name() string           { return r.name }
func (r *nonLeftRecursiveRule) Expression() Expression { return r.expr }

func (r *nonLeftRecursiveRule) Parse(text string, index int, cache *parseCache, ruleName *string) evalResult {
	name := effectiveName(ruleName, r.name)
	if result, ok := cache.lookup(*name, index); ok {
		return result
	}
	cache.enterRule()
	defer cache.leaveRule()
	ctx := &evalContext{text: text, cache: cache}
	result := r.expr.evaluate(ctx, index, name)
	cache.store(*name, index, result)
	return result
}

// leftRecursiveRule evaluates via seed-and-grow: seed the cache with a
// guaranteed failure, evaluate once, then keep re-evaluating and replacing
// the cached result only while each new candidate's character count
// strictly grows past the last accepted one.
type leftRecursiveRule struct {
	name string
	expr Expression
}

func (r *leftRecursiveRule) Name() string           { return r.name }
func (r *leftRecursiveRule) Expression() Expression { return r.expr }

func (r *leftRecursiveRule) Parse(text string, index int, cache *parseCache, ruleName *string) evalResult {
	name := effectiveName(ruleName, r.name)
	if result, ok := cache.lookup(*name, index); ok {
		return result
	}
	cache.enterRule()
	defer cache.leaveRule()
	ctx := &evalContext{text: text, cache: cache}

	// The seed is tagged with the ambient name as handed in, not the
	// effective one: an anonymous seed falls back to the expression's own
	// rendering, never to this rule's name.
	cache.store(*name, index, failure(r.expr.seedFailure(index, ruleName)))

	current := r.expr.evaluate(ctx, index, name)
	cache.store(*name, index, current)
	if !current.Matched {
		return current
	}

	for {
		next := r.expr.evaluate(ctx, index, name)
		if !next.Matched || next.Match.CharactersCount() <= current.Match.CharactersCount() {
			break
		}
		current = next
		cache.store(*name, index, current)
	}
	return current
}
