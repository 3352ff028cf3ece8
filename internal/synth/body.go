package synth

import (
	"fmt"
	"strings"
)

// bodyBuilder assembles the opaque body of a synthesized member line by line.
// The engine never interprets bodies; the emission collaborator renders them.
type bodyBuilder struct {
	sb     strings.Builder
	indent int
}

func (b *bodyBuilder) line(format string, args ...interface{}) {
	for i := 0; i < b.indent; i++ {
		b.sb.WriteByte('\t')
	}
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteByte('\n')
}

func (b *bodyBuilder) in()  { b.indent++ }
func (b *bodyBuilder) out() { b.indent-- }

func (b *bodyBuilder) String() string {
	return b.sb.String()
}

// lazyInit emits the guard that attaches the shared handle on first use.
func (b *bodyBuilder) lazyInit(recv, handle string) {
	b.line("if %s.%s == nil {", recv, handle)
	b.in()
	b.line("%s.%s = store.Attach()", recv, handle)
	b.out()
	b.line("}")
}
