package resource

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Resolver maps custom-scheme URLs to files under a fixed root directory.
// It is immutable and safe for concurrent use.
type Resolver struct {
	scheme string
	root   string
}

// NewResolver creates a resolver for scheme rooted at root. The root does not
// need to exist yet; requests simply fail until it does.
func NewResolver(scheme, root string) (*Resolver, error) {
	if scheme == "" {
		return nil, fmt.Errorf("%w: empty scheme", ErrInvalidPath)
	}
	if root == "" {
		return nil, fmt.Errorf("%w: empty root", ErrInvalidPath)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving resource root: %w", err)
	}
	return &Resolver{
		scheme: strings.ToLower(scheme),
		root:   abs,
	}, nil
}

// Scheme returns the URL scheme this resolver answers for.
func (r *Resolver) Scheme() string {
	return r.scheme
}

// Root returns the absolute resource root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a URL such as app://assets/a.png to <root>/assets/a.png.
// Query strings and fragments are ignored. A bare path without a scheme is
// accepted and treated as if it carried this resolver's scheme.
func (r *Resolver) Resolve(rawURL string) (string, error) {
	rest := rawURL
	prefix := r.scheme + "://"
	switch {
	case len(rest) >= len(prefix) && strings.EqualFold(rest[:len(prefix)], prefix):
		rest = rest[len(prefix):]
	case strings.Contains(rest, "://"):
		return "", fmt.Errorf("%w: %q", ErrSchemeMismatch, rawURL)
	}

	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	return r.ResolvePath(rest)
}

// ResolvePath maps an escaped, slash-separated path onto the resource root.
func (r *Resolver) ResolvePath(escaped string) (string, error) {
	decoded, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidPath, escaped, err)
	}
	if strings.IndexByte(decoded, 0) >= 0 {
		return "", fmt.Errorf("%w: NUL byte", ErrInvalidPath)
	}

	// Treat backslashes as separators everywhere so Windows-style
	// traversal cannot slip past the checks below.
	decoded = strings.ReplaceAll(decoded, `\`, "/")

	cleaned := path.Clean(strings.TrimLeft(decoded, "/"))
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("%w: %q names no file", ErrInvalidPath, escaped)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, escaped)
	}

	native := filepath.FromSlash(cleaned)
	if filepath.VolumeName(native) != "" || filepath.IsAbs(native) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, escaped)
	}

	full := filepath.Join(r.root, native)
	if !within(r.root, full) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, escaped)
	}

	// Symlinks inside the bundle must not point outside it.
	if real, err := filepath.EvalSymlinks(full); err == nil {
		realRoot, rerr := filepath.EvalSymlinks(r.root)
		if rerr != nil || !within(realRoot, real) {
			return "", fmt.Errorf("%w: %q links outside the root", ErrOutsideRoot, escaped)
		}
	}

	return full, nil
}

// within reports whether target is root or lies beneath it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
