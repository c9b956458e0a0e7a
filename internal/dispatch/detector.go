package dispatch

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"sajtmaskin/internal/v0"
)

// FindingKind identifies which repair predicate fired.
type FindingKind string

const (
	FindingUnresolvableImport FindingKind = "unresolvable_import"
	FindingMissingHookImport  FindingKind = "missing_hook_import"
	FindingPlaceholderImage   FindingKind = "placeholder_image"
)

// Finding is one defect detected in a generated file. Detection is pattern
// evidence only; no generated code is ever executed.
type Finding struct {
	Kind   FindingKind
	File   string
	Detail string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s in %s: %s", f.Kind, f.File, f.Detail)
}

// Node built-ins that the browser-side preview runtime cannot resolve.
// "node:" prefixed forms are matched by the same set.
var unresolvableModules = map[string]bool{
	"fs":             true,
	"fs/promises":    true,
	"path":           true,
	"os":             true,
	"child_process":  true,
	"net":            true,
	"tls":            true,
	"dgram":          true,
	"worker_threads": true,
}

// Image hosts that only ever serve placeholder art. Generated pages must
// reference real assets or the media library instead.
var placeholderHosts = []string{
	"via.placeholder.com",
	"placehold.co",
	"placekitten.com",
	"dummyimage.com",
	"placeimg.com",
}

var (
	importRe      = regexp.MustCompile(`(?m)^\s*import\s+(?:[^'"]*?\s+from\s+)?['"]([^'"]+)['"]`)
	requireRe     = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	hookUseRe     = regexp.MustCompile(`\b(use(?:State|Effect|Ref|Memo|Callback|Context|Reducer|LayoutEffect|Transition))\s*\(`)
	reactImportRe = regexp.MustCompile(`(?m)^\s*import\s+.*from\s+['"]react['"]`)
	imageURLRe    = regexp.MustCompile(`https?://([a-zA-Z0-9.-]+)/[^\s'"\)]*`)
)

// Detect runs all repair predicates over the generated file set. The
// predicates are independent; any subset may fire.
func Detect(files []v0.File) []Finding {
	var findings []Finding
	findings = append(findings, detectUnresolvableImports(files)...)
	findings = append(findings, detectMissingHookImports(files)...)
	findings = append(findings, detectPlaceholderImages(files)...)
	return findings
}

func isSourceFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs":
		return true
	}
	return false
}

// detectUnresolvableImports flags imports of modules absent from the
// preview runtime, and project-relative imports with no matching file in
// the generated set.
func detectUnresolvableImports(files []v0.File) []Finding {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[normalizeModulePath(f.Name)] = true
	}

	var findings []Finding
	for _, f := range files {
		if !isSourceFile(f.Name) {
			continue
		}
		for _, spec := range importSpecs(f.Content) {
			mod := strings.TrimPrefix(spec, "node:")
			if unresolvableModules[mod] {
				findings = append(findings, Finding{
					Kind:   FindingUnresolvableImport,
					File:   f.Name,
					Detail: fmt.Sprintf("module %q is not available in the preview runtime", spec),
				})
				continue
			}
			if target, ok := resolveLocal(f.Name, spec); ok && !present[target] {
				findings = append(findings, Finding{
					Kind:   FindingUnresolvableImport,
					File:   f.Name,
					Detail: fmt.Sprintf("import %q does not match any generated file", spec),
				})
			}
		}
	}
	return findings
}

func importSpecs(content string) []string {
	var specs []string
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		specs = append(specs, m[1])
	}
	for _, m := range requireRe.FindAllStringSubmatch(content, -1) {
		specs = append(specs, m[1])
	}
	return specs
}

// resolveLocal maps a relative or alias import to a normalized in-project
// path. Bare package names report ok=false and are left to the module set.
func resolveLocal(from, spec string) (string, bool) {
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		return normalizeModulePath(path.Join(path.Dir(from), spec)), true
	case strings.HasPrefix(spec, "@/"):
		return normalizeModulePath(strings.TrimPrefix(spec, "@/")), true
	}
	return "", false
}

// normalizeModulePath strips the extension and a trailing /index so that
// "components/hero" matches "components/hero.tsx" and "components/hero/index.tsx".
func normalizeModulePath(p string) string {
	p = strings.TrimPrefix(path.Clean(p), "./")
	if ext := path.Ext(p); ext != "" && isSourceFile(p) {
		p = strings.TrimSuffix(p, ext)
	}
	p = strings.TrimSuffix(p, "/index")
	return p
}

// detectMissingHookImports flags hook calls in files that never import
// from react. Plain JSX without hooks is fine: the framework compiles it
// without an explicit import.
func detectMissingHookImports(files []v0.File) []Finding {
	var findings []Finding
	for _, f := range files {
		if !isSourceFile(f.Name) {
			continue
		}
		hooks := hookUseRe.FindAllStringSubmatch(f.Content, -1)
		if len(hooks) == 0 || reactImportRe.MatchString(f.Content) {
			continue
		}
		seen := make(map[string]bool)
		var names []string
		for _, h := range hooks {
			if !seen[h[1]] {
				seen[h[1]] = true
				names = append(names, h[1])
			}
		}
		findings = append(findings, Finding{
			Kind:   FindingMissingHookImport,
			File:   f.Name,
			Detail: fmt.Sprintf("uses %s without importing them from react", strings.Join(names, ", ")),
		})
	}
	return findings
}

func detectPlaceholderImages(files []v0.File) []Finding {
	var findings []Finding
	for _, f := range files {
		for _, m := range imageURLRe.FindAllStringSubmatch(f.Content, -1) {
			host := strings.ToLower(m[1])
			for _, bad := range placeholderHosts {
				if host == bad {
					findings = append(findings, Finding{
						Kind:   FindingPlaceholderImage,
						File:   f.Name,
						Detail: fmt.Sprintf("references placeholder image host %s", host),
					})
					break
				}
			}
		}
	}
	return findings
}

// repairInstruction merges every finding into one combined repair message
// so the dispatcher issues a single repair call no matter how many
// predicates fired.
func repairInstruction(findings []Finding) string {
	var b strings.Builder
	b.WriteString("The previous generation has problems that must all be fixed in one pass. ")
	b.WriteString("Do not change anything else.\n")
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, f.Kind, f.File, f.Detail)
	}
	b.WriteString("\nRules: remove or replace imports that cannot resolve, ")
	b.WriteString("add missing react imports for every hook in use, ")
	b.WriteString("and replace placeholder image URLs with real assets or inline SVG.")
	return b.String()
}
