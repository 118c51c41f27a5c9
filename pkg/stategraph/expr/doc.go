/*
Package expr provides expression evaluation for declarative routing
rules over graph state.

# Overview

expr implements a small expression language for the `when:` rules of
declarative graph documents. Expressions are evaluated against the
shared state map, so routing decisions can be written as data instead
of code.

# Expression Syntax

	<expr> := <comparison>
	        | <expr> 'and' <expr>
	        | <expr> 'or' <expr>
	        | 'not' <expr>
	        | '!' <expr>
	        | <value>

	<comparison> := <value> <op> <value>
	<op> := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains'
	<value> := 'string' | "string" | number | true | false | null | field

# Operators

Comparison operators:

	==         Equal (string comparison)
	!=         Not equal (string comparison)
	<          Less than (numeric comparison)
	>          Greater than (numeric comparison)
	<=         Less than or equal (numeric comparison)
	>=         Greater than or equal (numeric comparison)
	contains   String contains substring

Logical operators:

	and        Logical AND
	or         Logical OR
	not        Logical NOT (prefix)
	!          Logical NOT (prefix)

# Value Types

Values can be:

  - Quoted strings: 'hello' or "hello"
  - Numbers: 42, 3.14, -1
  - Booleans: true, false
  - Null: null, nil
  - State fields: referenced by name, with dotted paths for nested
    maps ("user.name")

# Examples

Simple comparisons:

	status == 'approved'        // String equality
	attempts > 3                // Numeric comparison
	query != ''                 // Not empty string

Logical operators:

	status == 'ready' and attempts > 0
	approved or override
	not rejected
	!cancelled

State field resolution:

	s := map[string]any{"status": "approved", "attempts": 2}
	result, _ := expr.Eval("status == 'approved'", s)  // true
	result, _ := expr.Eval("attempts > 3", s)          // false

Nested fields:

	s := map[string]any{"user": map[string]any{"tier": "pro"}}
	result, _ := expr.Eval("user.tier == 'pro'", s)    // true

# Custom Operators

Register custom binary operators:

	e := expr.New(
	    expr.WithCustomOperator("matches", func(left, right any) bool {
	        pattern := fmt.Sprintf("%v", right)
	        value := fmt.Sprintf("%v", left)
	        matched, _ := regexp.MatchString(pattern, value)
	        return matched
	    }),
	)
	result, _ := e.Evaluate("name matches '^test.*'", s)

# Truthiness

Single values are evaluated for truthiness:

  - nil/null: false
  - bool: the boolean value
  - string: false if empty, true otherwise
  - numbers (int, int64, float64): false if zero, true otherwise
  - other types: true
*/
package expr
