package parser

import "github.com/edwingeng/deque"

// tokenBuffer is the parser's input: pending tokens are taken from the
// front, and every taken token is journaled so a failed operation can push
// it back where it came from.
type tokenBuffer struct {
	pending deque.Deque
	taken   []Token
}

func newTokenBuffer(tokens []Token) *tokenBuffer {
	b := &tokenBuffer{pending: deque.NewDeque()}
	for _, tok := range tokens {
		b.pending.PushBack(tok)
	}
	return b
}

func (b *tokenBuffer) peek() (Token, bool) {
	if b.pending.Empty() {
		return Token{}, false
	}
	return b.pending.Front().(Token), true
}

func (b *tokenBuffer) next() (Token, bool) {
	if b.pending.Empty() {
		return Token{}, false
	}
	tok := b.pending.PopFront().(Token)
	b.taken = append(b.taken, tok)
	return tok, true
}

func (b *tokenBuffer) mark() int {
	return len(b.taken)
}

func (b *tokenBuffer) rewind(mark int) {
	for len(b.taken) > mark {
		last := len(b.taken) - 1
		b.pending.PushFront(b.taken[last])
		b.taken = b.taken[:last]
	}
}

// commit forgets the journal; taken tokens can no longer be restored.
func (b *tokenBuffer) commit() {
	b.taken = b.taken[:0]
}

func (b *tokenBuffer) len() int {
	return b.pending.Len()
}

// drain empties the buffer and returns the pending tokens in order.
func (b *tokenBuffer) drain() []Token {
	if b.pending.Empty() {
		return nil
	}
	rest := make([]Token, 0, b.pending.Len())
	for !b.pending.Empty() {
		rest = append(rest, b.pending.PopFront().(Token))
	}
	return rest
}
