// Package compiler implements the single-pass Pratt-style compiler that
// lowers Lox source to bytecode (spec.md §4.2), plus the instruction
// format it emits into (spec.md §4.3) and a disassembler used by tests and
// the CLI's "disasm" subcommand.
//
// Compile-time errors (scan/parse and semantic alike) are reported through
// a single handler, exactly like the teacher's lang/scanner and
// lang/resolver packages do, rather than being thrown as Go panics: the
// compiler enters "panic mode" on the first error (spec.md §4.2 "Errors"),
// discards tokens until a statement boundary, and keeps compiling so that
// a single run can report many independent mistakes.
package compiler

import (
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/loxlang/golox/lang/scanner"
	"github.com/loxlang/golox/lang/token"
)

const maxLocals = 256
const maxUpvalues = 256
const maxArgs = 255
const maxJump = 1<<16 - 1

// Compile compiles source into a top-level FunctionProto (FunctionKind
// Script). ok is false if any scan, parse, or semantic error was reported,
// in which case the returned FunctionProto must not be executed (spec.md
// §4.2 "Overall compilation fails if any error was reported").
func Compile(filename string, source []byte, errHandler func(token.Position, string)) (proto *FunctionProto, ok bool) {
	c := &compilerState{filename: filename, errHandler: errHandler}
	c.sc.Init(filename, source, c.scanError)
	c.advance()

	c.fc = newFuncCompiler(nil, "", KindScript)
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFunction()
	return fn, !c.hadError
}

// Precedence levels, ascending, per spec.md §4.2's "Parser precedence
// table".
type precedence uint8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < <= > >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // () .
	precPrimary
)

type parseFn func(c *compilerState, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Token]parseRule

func init() {
	rules = map[token.Token]parseRule{
		token.LPAREN:    {prefix: (*compilerState).grouping, infix: (*compilerState).call, precedence: precCall},
		token.DOT:       {infix: (*compilerState).dot, precedence: precCall},
		token.MINUS:     {prefix: (*compilerState).unary, infix: (*compilerState).binary, precedence: precTerm},
		token.PLUS:      {infix: (*compilerState).binary, precedence: precTerm},
		token.SLASH:     {infix: (*compilerState).binary, precedence: precFactor},
		token.STAR:      {infix: (*compilerState).binary, precedence: precFactor},
		token.BANG:      {prefix: (*compilerState).unary},
		token.BANG_EQ:   {infix: (*compilerState).binary, precedence: precEquality},
		token.EQEQ:      {infix: (*compilerState).binary, precedence: precEquality},
		token.GT:        {infix: (*compilerState).binary, precedence: precComparison},
		token.GE:        {infix: (*compilerState).binary, precedence: precComparison},
		token.LT:        {infix: (*compilerState).binary, precedence: precComparison},
		token.LE:        {infix: (*compilerState).binary, precedence: precComparison},
		token.IDENT:     {prefix: (*compilerState).variable},
		token.STRING:    {prefix: (*compilerState).string},
		token.NUMBER:    {prefix: (*compilerState).number},
		token.AND:       {infix: (*compilerState).and_, precedence: precAnd},
		token.OR:        {infix: (*compilerState).or_, precedence: precOr},
		token.FALSE:     {prefix: (*compilerState).literal},
		token.NIL:       {prefix: (*compilerState).literal},
		token.TRUE:      {prefix: (*compilerState).literal},
		token.THIS:      {prefix: (*compilerState).this_},
		token.SUPER:     {prefix: (*compilerState).super_},
	}
}

func getRule(t token.Token) parseRule { return rules[t] }

// local tracks one entry of a funcCompiler's lexical scope stack.
type local struct {
	name       string
	depth      int // -1 while uninitialized
	isCaptured bool
}

const uninitialized = -1

// funcCompiler is the "active FunctionCompiler frame" of spec.md §4.2.
type funcCompiler struct {
	enclosing *funcCompiler
	proto     *FunctionProto
	kind      FunctionKind

	locals     []local
	upvalues   []UpvalueRef
	scopeDepth int
}

func newFuncCompiler(enclosing *funcCompiler, name string, kind FunctionKind) *funcCompiler {
	fc := &funcCompiler{
		enclosing: enclosing,
		kind:      kind,
		proto:     &FunctionProto{Name: name, Kind: kind},
	}
	// locals[0] is reserved (spec.md §4.2 "Locals").
	slot0 := local{depth: 0}
	if kind == KindMethod || kind == KindInitializer {
		slot0.name = "this"
	}
	fc.locals = append(fc.locals, slot0)
	return fc
}

// classCompiler is the "ClassCompiler frame" of spec.md §4.2.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// compilerState holds all of the compiler's mutable state for compiling a
// single source file top to bottom.
type compilerState struct {
	filename   string
	sc         scanner.Scanner
	current    scanner.Token
	previous   scanner.Token
	errHandler func(token.Position, string)

	hadError  bool
	panicMode bool

	fc *funcCompiler
	cc *classCompiler
}

func (c *compilerState) scanError(pos token.Position, msg string) {
	c.reportAt(pos.Line, msg)
}

// --- token stream -----------------------------------------------------

func (c *compilerState) advance() {
	c.previous = c.current
	for {
		c.current = c.sc.Scan()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		// the scanner already reported the lexical error via scanError
	}
}

func (c *compilerState) check(t token.Token) bool { return c.current.Kind == t }

func (c *compilerState) match(t token.Token) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *compilerState) consume(t token.Token, msg string) {
	if c.current.Kind == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting ----------------------------------------------------

func (c *compilerState) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *compilerState) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *compilerState) errorAt(tok scanner.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.reportAt(tok.Line, msg)
}

func (c *compilerState) reportAt(line int, msg string) {
	c.hadError = true
	if c.errHandler != nil {
		c.errHandler(token.Position{Filename: c.filename, Line: line}, msg)
	}
}

// synchronize discards tokens until a likely statement boundary, per
// spec.md §4.2 "panic mode".
func (c *compilerState) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---------------------------------------------------

func (c *compilerState) chunk() *Chunk { return &c.fc.proto.Chunk }

func (c *compilerState) emitByte(b byte) { c.chunk().write(b, c.previous.Line) }

func (c *compilerState) emitOp(op OpCode) { c.emitByte(byte(op)) }

func (c *compilerState) emitOpByte(op OpCode, arg byte) {
	c.emitByte(byte(op))
	c.emitByte(arg)
}

// emitJump writes op followed by a two-byte placeholder operand and
// returns the offset of the first placeholder byte (spec.md §4.2
// "emit_jump").
func (c *compilerState) emitJump(op OpCode) int {
	c.emitByte(byte(op))
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the jump operand at offset with the distance from
// just after the operand to the current code position.
func (c *compilerState) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > maxJump {
		c.error("Too much code to jump over.")
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

// emitLoop emits OP_LOOP with the backward distance to loopStart.
func (c *compilerState) emitLoop(loopStart int) {
	c.emitOp(OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > maxJump {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *compilerState) emitReturn() {
	if c.fc.kind == KindInitializer {
		// `init` always returns `this`, which lives in reserved local slot 0
		// (spec.md §4.4 RETURN "For Initializer frames...").
		c.emitOpByte(OpGetLocal, 0)
	} else {
		c.emitOp(OpNil)
	}
	c.emitOp(OpReturn)
}

// makeConstant appends v to the current chunk's constant pool, bounding it
// to what a three-byte CONSTANT_LONG operand can index.
func (c *compilerState) makeConstant(v interface{}) int {
	idx := c.chunk().addConstant(v)
	if idx > 1<<24-1 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

// makeNameConstant is like makeConstant but for values used as the operand
// of a fixed one-byte (c1) opcode — OP_(GET|SET|DEFINE)_GLOBAL,
// OP_GET_PROPERTY, OP_SET_PROPERTY, OP_GET_SUPER, OP_METHOD, OP_CLASS,
// OP_CLOSURE — per the instruction formats of spec.md §4.3 (unlike the
// literal-value OP_CONSTANT, these never grow a long form).
func (c *compilerState) makeNameConstant(v interface{}) int {
	idx := c.chunk().addConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

// emitConstant loads v onto the stack, using the compact one-byte
// OP_CONSTANT form while possible and transparently upgrading to the
// three-byte OP_CONSTANT_LONG once the pool exceeds 256 entries (spec.md
// §9 Open Question, resolved in DESIGN.md).
func (c *compilerState) emitConstant(v interface{}) {
	idx := c.makeConstant(v)
	c.emitConstantIndex(idx)
}

func (c *compilerState) emitConstantIndex(idx int) {
	if idx < 256 {
		c.emitOpByte(OpConstant, byte(idx))
		return
	}
	c.emitByte(byte(OpConstantLong))
	c.emitByte(byte(idx))
	c.emitByte(byte(idx >> 8))
	c.emitByte(byte(idx >> 16))
}

// --- scope & function bookkeeping ---------------------------------------

func (c *compilerState) beginScope() { c.fc.scopeDepth++ }

func (c *compilerState) endScope() {
	c.fc.scopeDepth--
	fc := c.fc
	for len(fc.locals) > 0 && fc.locals[len(fc.locals)-1].depth > fc.scopeDepth {
		last := fc.locals[len(fc.locals)-1]
		if last.isCaptured {
			c.emitOp(OpCloseUpvalue)
		} else {
			c.emitOp(OpPop)
		}
		fc.locals = fc.locals[:len(fc.locals)-1]
	}
}

// endFunction finalizes the current funcCompiler, emitting the implicit
// return sentinel (see emitReturn), and pops back to the enclosing compiler
// frame.
func (c *compilerState) endFunction() *FunctionProto {
	c.emitReturn()
	proto := c.fc.proto
	proto.UpvalueCount = len(c.fc.upvalues)
	proto.Upvalues = c.fc.upvalues
	c.fc = c.fc.enclosing
	return proto
}

// --- declarations & statements -------------------------------------------

func (c *compilerState) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *compilerState) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compilerState) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *compilerState) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(OpPrint)
}

func (c *compilerState) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(OpPop)
}

func (c *compilerState) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitOp(OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compilerState) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(OpPop)
}

func (c *compilerState) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpIfFalse)
		c.emitOp(OpPop)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OpPop)
	}
	c.endScope()
}

func (c *compilerState) returnStatement() {
	if c.fc.kind == KindScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.fc.kind == KindInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(OpReturn)
}

// --- variables ------------------------------------------------------------

func (c *compilerState) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// parseVariable consumes an identifier and declares it. For a local
// variable this reserves a slot (returning an unused index, since locals
// are addressed positionally); for a global it returns the constant-pool
// index of its interned name.
func (c *compilerState) parseVariable(errMsg string) int {
	c.consume(token.IDENT, errMsg)
	name := c.previous.Lexeme

	c.declareVariable(name)
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *compilerState) identifierConstant(name string) int {
	return c.makeNameConstant(name)
}

func (c *compilerState) declareVariable(name string) {
	if c.fc.scopeDepth == 0 {
		return
	}
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		l := c.fc.locals[i]
		if l.depth != uninitialized && l.depth < c.fc.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *compilerState) addLocal(name string) {
	if len(c.fc.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fc.locals = append(c.fc.locals, local{name: name, depth: uninitialized})
}

func (c *compilerState) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[len(c.fc.locals)-1].depth = c.fc.scopeDepth
}

func (c *compilerState) defineVariable(global int) {
	if c.fc.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(OpDefineGlobal, byte(global))
}

// resolveLocal implements step 1 of spec.md §4.2 "Variable resolution".
func resolveLocal(fc *funcCompiler, name string) (slot int, uninit bool, found bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			if fc.locals[i].depth == uninitialized {
				return i, true, true
			}
			return i, false, true
		}
	}
	return 0, false, false
}

// resolveUpvalue implements step 2: walk enclosing FunctionCompilers,
// marking the matched local captured and threading an upvalue through
// every intermediate frame via addUpvalue.
func (c *compilerState) resolveUpvalue(fc *funcCompiler, name string) (idx int, found bool) {
	if fc.enclosing == nil {
		return 0, false
	}
	if slot, uninit, ok := resolveLocal(fc.enclosing, name); ok {
		if uninit {
			return 0, false
		}
		fc.enclosing.locals[slot].isCaptured = true
		return c.addUpvalue(fc, uint8(slot), true), true
	}
	if outerIdx, ok := c.resolveUpvalue(fc.enclosing, name); ok {
		return c.addUpvalue(fc, uint8(outerIdx), false), true
	}
	return 0, false
}

func (c *compilerState) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	if i := slices.IndexFunc(fc.upvalues, func(uv UpvalueRef) bool {
		return uv.Index == index && uv.IsLocal == isLocal
	}); i >= 0 {
		return i
	}
	if len(fc.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, UpvalueRef{IsLocal: isLocal, Index: index})
	return len(fc.upvalues) - 1
}

func (c *compilerState) namedVariable(name string, canAssign bool) {
	var getOp, setOp OpCode
	var arg int

	if slot, uninit, ok := resolveLocal(c.fc, name); ok {
		if uninit {
			c.error("Can't read local variable in its own initializer.")
		}
		getOp, setOp, arg = OpGetLocal, OpSetLocal, slot
	} else if idx, ok := c.resolveUpvalue(c.fc, name); ok {
		getOp, setOp, arg = OpGetUpvalue, OpSetUpvalue, idx
	} else {
		getOp, setOp, arg = OpGetGlobal, OpSetGlobal, c.identifierConstant(name)
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

// --- Pratt expression parsing --------------------------------------------

func (c *compilerState) expression() { c.parsePrecedence(precAssignment) }

func (c *compilerState) parsePrecedence(prec precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Kind).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefixRule(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infixRule := getRule(c.previous.Kind).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func (c *compilerState) grouping(_ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *compilerState) number(_ bool) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(v)
}

func (c *compilerState) string(_ bool) {
	c.emitConstant(c.previous.Lexeme)
}

func (c *compilerState) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *compilerState) this_(_ bool) {
	if c.cc == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable("this", false)
}

func (c *compilerState) super_(_ bool) {
	switch {
	case c.cc == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.cc.hasSuperclass:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOpByte(OpSuperInvoke, byte(name))
		c.emitByte(byte(argCount))
		return
	}
	c.namedVariable("super", false)
	c.emitOpByte(OpGetSuper, byte(name))
}

func (c *compilerState) literal(_ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(OpFalse)
	case token.NIL:
		c.emitOp(OpNil)
	case token.TRUE:
		c.emitOp(OpTrue)
	}
}

func (c *compilerState) unary(_ bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.BANG:
		c.emitOp(OpNot)
	case token.MINUS:
		c.emitOp(OpNegate)
	}
}

func (c *compilerState) binary(_ bool) {
	opKind := c.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BANG_EQ:
		c.emitOp(OpEqual)
		c.emitOp(OpNot)
	case token.EQEQ:
		c.emitOp(OpEqual)
	case token.GT:
		c.emitOp(OpGreater)
	case token.GE:
		c.emitOp(OpLess)
		c.emitOp(OpNot)
	case token.LT:
		c.emitOp(OpLess)
	case token.LE:
		c.emitOp(OpGreater)
		c.emitOp(OpNot)
	case token.PLUS:
		c.emitOp(OpAdd)
	case token.MINUS:
		c.emitOp(OpSubtract)
	case token.STAR:
		c.emitOp(OpMultiply)
	case token.SLASH:
		c.emitOp(OpDivide)
	}
}

func (c *compilerState) and_(_ bool) {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *compilerState) or_(_ bool) {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)

	c.patchJump(elseJump)
	c.emitOp(OpPop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *compilerState) call(_ bool) {
	argCount := c.argumentList()
	c.emitOpByte(OpCall, byte(argCount))
}

func (c *compilerState) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(OpSetProperty, byte(name))
	case c.match(token.LPAREN):
		argCount := c.argumentList()
		c.emitOpByte(OpInvoke, byte(name))
		c.emitByte(byte(argCount))
	default:
		c.emitOpByte(OpGetProperty, byte(name))
	}
}

func (c *compilerState) argumentList() int {
	argCount := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}

// --- functions & classes ---------------------------------------------------

func (c *compilerState) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(KindFunction)
	c.defineVariable(global)
}

// function compiles a function body into a brand-new funcCompiler, then
// emits OP_CLOSURE in the *enclosing* chunk referencing the compiled
// FunctionProto, followed by its upvalue table (spec.md §4.2 "Functions").
func (c *compilerState) function(kind FunctionKind) {
	name := c.previous.Lexeme
	c.fc = newFuncCompiler(c.fc, name, kind)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fc.proto.Arity++
			if c.fc.proto.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	proto := c.endFunction()
	// OP_CLOSURE's operand is always a single byte (spec.md §4.3 "CLOSURE
	// c1"); unlike literal constants, the function table practically never
	// needs the CONSTANT_LONG treatment, so overflow is a compile error
	// rather than a silent width upgrade.
	idx := c.makeNameConstant(proto)
	c.emitOpByte(OpClosure, byte(idx))
	for _, uv := range proto.Upvalues {
		if uv.IsLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.Index)
	}
}

func (c *compilerState) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	className := c.previous
	nameConst := c.identifierConstant(className.Lexeme)
	c.declareVariable(className.Lexeme)

	c.emitOpByte(OpClass, byte(nameConst))
	c.defineVariable(nameConst)

	cc := &classCompiler{enclosing: c.cc}
	c.cc = cc

	if c.match(token.LT) {
		c.consume(token.IDENT, "Expect superclass name.")
		c.variable(false)
		if className.Lexeme == c.previous.Lexeme {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(className.Lexeme, false)
		c.emitOp(OpInherit)
		cc.hasSuperclass = true
	}

	c.namedVariable(className.Lexeme, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(OpPop)

	if cc.hasSuperclass {
		c.endScope()
	}
	c.cc = cc.enclosing
}

func (c *compilerState) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.previous.Lexeme
	constant := c.identifierConstant(name)

	kind := KindMethod
	if name == "init" {
		kind = KindInitializer
	}
	c.function(kind)
	c.emitOpByte(OpMethod, byte(constant))
}
