package extract

import "regexp"

var anchorPattern = regexp.MustCompile(`<a href="([^"]+)"[^>]*>`)

// RegexSource matches the literal `<a href="...">` shape in one pass.
type RegexSource struct {
	selfDomain string
}

// NewRegexSource returns the default page parser.
func NewRegexSource(selfDomain string) *RegexSource {
	return &RegexSource{selfDomain: selfDomain}
}

// Name returns "regex".
func (s *RegexSource) Name() string { return "regex" }

// Extract emits every redirect-wrapped destination in document order.
func (s *RegexSource) Extract(body []byte, emit Emitter) error {
	for _, m := range anchorPattern.FindAllSubmatch(body, -1) {
		link, ok := Destination(string(m[1]), s.selfDomain)
		if !ok {
			continue
		}
		if err := emit(link); err != nil {
			return err
		}
	}
	return nil
}
