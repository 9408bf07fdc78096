package cache

import (
	"fmt"
	"strings"

	cacheerrors "github.com/Humphrey-He/rcache/pkg/errors"
)

// IdentityKeyTemplate sends keys to the backend unchanged.
//
// IdentityKeyTemplate 将键原样发送到后端。
const IdentityKeyTemplate = "%s"

// keyTemplate renders cache keys into backend keys, e.g. "app:users:%s".
// It holds exactly one %s verb; a literal percent sign is written %%.
type keyTemplate struct {
	format string
	// prefix and suffix are the literal text around %s, already unescaped.
	prefix, suffix string
}

func parseKeyTemplate(tpl string) (keyTemplate, error) {
	if tpl == "" {
		tpl = IdentityKeyTemplate
	}

	var (
		literal strings.Builder
		prefix  string
		slots   int
	)
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '%' {
			literal.WriteByte(tpl[i])
			continue
		}
		if i+1 == len(tpl) {
			return keyTemplate{}, fmt.Errorf("%w: %q ends with a bare %%", cacheerrors.ErrInvalidKeyTemplate, tpl)
		}
		i++
		switch tpl[i] {
		case '%':
			literal.WriteByte('%')
		case 's':
			slots++
			prefix = literal.String()
			literal.Reset()
		default:
			return keyTemplate{}, fmt.Errorf("%w: %q uses verb %%%c, only %%s is allowed", cacheerrors.ErrInvalidKeyTemplate, tpl, tpl[i])
		}
	}
	if slots != 1 {
		return keyTemplate{}, fmt.Errorf("%w: %q must contain exactly one %%s, found %d", cacheerrors.ErrInvalidKeyTemplate, tpl, slots)
	}
	return keyTemplate{format: tpl, prefix: prefix, suffix: literal.String()}, nil
}

func (t keyTemplate) render(key string) string {
	return t.prefix + key + t.suffix
}

// pattern returns the glob matching every key rendered by the template.
func (t keyTemplate) pattern() string {
	return escapeGlob(t.prefix) + "*" + escapeGlob(t.suffix)
}

func (t keyTemplate) String() string {
	return t.format
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
