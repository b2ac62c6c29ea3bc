package toolcase

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultToolkitName is the implicit toolkit for tools registered without
// one.
const DefaultToolkitName = "Tools"

// Toolkit is a named, optionally versioned collection of tools, typically
// corresponding to one integration. Toolkit authors build one at startup and
// hand it to Catalog.AddToolkit.
type Toolkit struct {
	Name        string
	Version     string
	Description string
	PackageName string

	entries []toolkitEntry
}

// toolkitEntry defers NewTool errors until registration so one bad
// definition does not stop the rest of the toolkit from loading.
type toolkitEntry struct {
	tool *Tool
	err  error
}

// NewToolkit creates a toolkit. version may be empty.
func NewToolkit(name, version, description string) *Toolkit {
	return &Toolkit{Name: name, Version: version, Description: description}
}

// Add appends a tool to the toolkit. It accepts the (tool, error) pair
// returned by NewTool directly:
//
//	tk.Add(toolcase.NewTool("list_rooms", "List rooms", listRooms))
//
// A non-nil error is held until AddToolkit, where it is reported without
// blocking the toolkit's other tools.
func (tk *Toolkit) Add(t *Tool, err error) {
	tk.entries = append(tk.entries, toolkitEntry{tool: t, err: err})
}

// info returns the materialized toolkit metadata, with the name normalized
// the same way tool names are.
func (tk *Toolkit) info() ToolkitInfo {
	return ToolkitInfo{
		Name:        toPascalCase(tk.Name),
		Version:     tk.Version,
		Description: tk.Description,
	}
}

// ToolMeta records where a materialized tool came from.
type ToolMeta struct {
	Toolkit string
	Package string
	AddedAt time.Time
}

// MaterializedTool is a catalog entry: the immutable definition, the
// executable tool reference, and the origin metadata.
type MaterializedTool struct {
	Definition ToolDefinition
	Tool       *Tool
	Meta       ToolMeta
}

// FQN returns the entry's fully-qualified name.
func (m *MaterializedTool) FQN() FullyQualifiedName { return m.Definition.FQN() }

// RequiresAuth reports whether the tool declares an authorization
// requirement.
func (m *MaterializedTool) RequiresAuth() bool {
	return m.Definition.Requirements.Authorization != nil
}

// Catalog is the in-memory registry mapping fully-qualified names to
// materialized tools. Registration happens single-threaded at startup; after
// that the catalog is read-mostly and safe for concurrent lookups. Entries
// are replaced atomically on redefinition, never mutated in place.
type Catalog struct {
	mu        sync.RWMutex
	tools     map[fqnKey]*MaterializedTool
	versions  map[pairKey][]fqnKey
	byToolkit map[string][]fqnKey
	order     []fqnKey
	// canonical PascalCase spelling per folded toolkit name; used to reject
	// two distinct toolkits whose names collide case-insensitively
	toolkitCase map[string]string

	disabledTools    map[string]struct{}
	disabledToolkits map[string]struct{}
	logger           *slog.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	var o catalogOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	c := &Catalog{
		tools:            make(map[fqnKey]*MaterializedTool),
		versions:         make(map[pairKey][]fqnKey),
		byToolkit:        make(map[string][]fqnKey),
		toolkitCase:      make(map[string]string),
		disabledTools:    make(map[string]struct{}),
		disabledToolkits: make(map[string]struct{}),
		logger:           o.logger,
	}
	for _, name := range o.disabledTools {
		c.disabledTools[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	for _, name := range o.disabledToolkits {
		c.disabledToolkits[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return c
}

// AddTool registers a tool under the given toolkit. A nil toolkit promotes
// the tool into the implicit "Tools" toolkit with no version.
//
// Redefinition policy: registering a different tool under a fully-equal FQN
// replaces the previous entry (last wins, logged); re-registering the same
// *Tool instance is a no-op; registering under an FQN that differs only by
// toolkit version is additive, so multiple versions coexist.
func (c *Catalog) AddTool(t *Tool, tk *Toolkit) (FullyQualifiedName, error) {
	if t == nil {
		return FullyQualifiedName{}, errors.New("catalog: tool must not be nil")
	}
	if tk == nil {
		tk = &Toolkit{Name: DefaultToolkitName}
	}
	if tk.Name == "" {
		return FullyQualifiedName{}, definitionErrorf(t.name, "toolkit name must not be empty")
	}
	info := tk.info()
	def := t.definition(info)
	fqn := def.FQN()

	folded := strings.ToLower(info.Name)
	if _, off := c.disabledToolkits[folded]; off {
		c.logger.Info("toolkit disabled, skipping tool", "toolkit", info.Name, "tool", t.name)
		return fqn, nil
	}
	if _, off := c.disabledTools[folded+ToolNameSeparator+strings.ToLower(t.name)]; off {
		c.logger.Info("tool disabled, skipping", "tool", fqn.String())
		return fqn, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.toolkitCase[folded]; ok && existing != info.Name {
		return FullyQualifiedName{}, definitionErrorf(t.name,
			"toolkit %q collides case-insensitively with already-registered toolkit %q", info.Name, existing)
	}

	key := fqn.key()
	if existing, ok := c.tools[key]; ok {
		if existing.Tool == t {
			return fqn, nil
		}
		c.logger.Warn("tool redefined, replacing previous registration", "tool", fqn.String())
		c.tools[key] = &MaterializedTool{
			Definition: def,
			Tool:       t,
			Meta:       ToolMeta{Toolkit: info.Name, Package: tk.PackageName, AddedAt: time.Now()},
		}
		return fqn, nil
	}

	c.tools[key] = &MaterializedTool{
		Definition: def,
		Tool:       t,
		Meta:       ToolMeta{Toolkit: info.Name, Package: tk.PackageName, AddedAt: time.Now()},
	}
	c.toolkitCase[folded] = info.Name
	c.order = append(c.order, key)
	pair := fqn.pairKey()
	c.versions[pair] = append(c.versions[pair], key)
	c.byToolkit[folded] = append(c.byToolkit[folded], key)
	return fqn, nil
}

// AddToolkit registers every tool of a toolkit. A definition error in one
// tool is logged and reported but does not abort registration of the rest;
// the returned error joins all per-tool failures.
func (c *Catalog) AddToolkit(tk *Toolkit) ([]FullyQualifiedName, error) {
	if tk == nil {
		return nil, errors.New("catalog: toolkit must not be nil")
	}
	var (
		fqns []FullyQualifiedName
		errs []error
	)
	for _, entry := range tk.entries {
		if entry.err != nil {
			c.logger.Warn("skipping tool with definition error", "toolkit", tk.Name, "error", entry.err)
			errs = append(errs, entry.err)
			continue
		}
		fqn, err := c.AddTool(entry.tool, tk)
		if err != nil {
			c.logger.Warn("failed to register tool", "toolkit", tk.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		fqns = append(fqns, fqn)
	}
	return fqns, errors.Join(errs...)
}

// Get resolves a fully-qualified name to exactly one catalog entry.
//
// When the version is explicit (and not "latest"), only an exact match
// resolves; a miss is ErrToolNotFound even if other versions exist. When the
// version is absent or "latest", the highest registered version for the
// case-folded (toolkit, tool) pair wins.
func (c *Catalog) Get(fqn FullyQualifiedName) (*MaterializedTool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if fqn.ToolkitVersion != "" && fqn.ToolkitVersion != VersionLatest {
		if m, ok := c.tools[fqn.key()]; ok {
			return m, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, fqn.String())
	}

	keys := c.versions[fqn.pairKey()]
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, fqn.String())
	}
	best := keys[0]
	for _, k := range keys[1:] {
		if compareVersions(k.version, best.version) > 0 {
			best = k
		}
	}
	return c.tools[best], nil
}

// GetByName resolves a client-supplied "Toolkit.Tool" or "Toolkit.Tool@ver"
// string. A non-empty version argument overrides any suffix in the string. A
// bare tool name with no separator matches the first registered tool with
// that name.
func (c *Catalog) GetByName(name, version string) (*MaterializedTool, error) {
	if strings.Contains(name, ToolNameSeparator) {
		fqn, err := ParseFullyQualifiedName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrToolNotFound, err)
		}
		if version != "" {
			fqn.ToolkitVersion = version
		}
		return c.Get(fqn)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.order {
		m := c.tools[key]
		if !strings.EqualFold(m.Definition.Name, name) {
			continue
		}
		if version != "" && version != VersionLatest && m.Definition.Toolkit.Version != version {
			continue
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
}

// List returns all entries in registration order, optionally filtered by
// toolkit name (case-insensitive). The returned slice is a snapshot.
func (c *Catalog) List(toolkitFilter string) []*MaterializedTool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := c.order
	if toolkitFilter != "" {
		keys = c.byToolkit[strings.ToLower(toolkitFilter)]
	}
	out := make([]*MaterializedTool, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.tools[key])
	}
	return out
}

// Definitions returns every registered definition in registration order.
func (c *Catalog) Definitions() []ToolDefinition {
	entries := c.List("")
	out := make([]ToolDefinition, len(entries))
	for i, m := range entries {
		out[i] = m.Definition
	}
	return out
}

// Iter yields every registered entry exactly once, in registration order.
func (c *Catalog) Iter() iter.Seq[*MaterializedTool] {
	return func(yield func(*MaterializedTool) bool) {
		for _, m := range c.List("") {
			if !yield(m) {
				return
			}
		}
	}
}

// Len returns the number of registered entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// IsEmpty reports whether no tools are registered.
func (c *Catalog) IsEmpty() bool { return c.Len() == 0 }

// Contains reports whether the exact FQN (including version) is registered.
func (c *Catalog) Contains(fqn FullyQualifiedName) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tools[fqn.key()]
	return ok
}

// ToolNames returns the FQNs of all registered entries in registration
// order.
func (c *Catalog) ToolNames() []FullyQualifiedName {
	entries := c.List("")
	out := make([]FullyQualifiedName, len(entries))
	for i, m := range entries {
		out[i] = m.FQN()
	}
	return out
}

// FindByTool returns the definition registered for the given tool instance.
func (c *Catalog) FindByTool(t *Tool) (ToolDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range c.order {
		if m := c.tools[key]; m.Tool == t {
			return m.Definition, true
		}
	}
	return ToolDefinition{}, false
}
