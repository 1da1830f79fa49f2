package core

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// BackOffice represents the main admin instance
type BackOffice struct {
	adapter       Adapter
	resources     map[string]*Resource
	resourceOrder []string // Track registration order for consistent display
	listKind      *ViewKind
	config        *Config
}

// Config holds configuration for the BackOffice instance
type Config struct {
	BasePath     string                            `json:"base_path"`
	Title        string                            `json:"title"`
	ItemsPerPage int                               `json:"items_per_page"`
	Middleware   []func(http.Handler) http.Handler `json:"-"`
	Auth         *auth.AuthConfig                  `json:"-"`

	// ActionsEnabled switches bulk actions on for every list view
	ActionsEnabled bool `json:"actions_enabled"`

	// BaselineActions are offered on every model-backed list view ahead of
	// the actions declared by its view kinds
	BaselineActions []ActionEntry `json:"-"`

	// Permissions decides required permissions of actions
	Permissions auth.PermissionChecker `json:"-"`

	Logger *zap.Logger `json:"-"`
}

// Option customizes the Config of a new BackOffice
type Option func(*Config)

// WithBaselineActions sets the actions every model-backed list view starts from
func WithBaselineActions(entries ...ActionEntry) Option {
	return func(c *Config) {
		c.BaselineActions = append([]ActionEntry{}, entries...)
	}
}

// WithPermissions sets the permission checker used when building action registries
func WithPermissions(checker auth.PermissionChecker) Option {
	return func(c *Config) {
		c.Permissions = checker
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTitle sets the admin page title
func WithTitle(title string) Option {
	return func(c *Config) {
		if title != "" {
			c.Title = title
		}
	}
}

// WithBasePath sets the URL prefix the admin is mounted on
func WithBasePath(basePath string) Option {
	return func(c *Config) {
		c.BasePath = "/" + strings.Trim(basePath, "/")
	}
}

// WithItemsPerPage sets the list page size
func WithItemsPerPage(n int) Option {
	return func(c *Config) {
		if n > 0 && n <= MaxPageSize {
			c.ItemsPerPage = n
		}
	}
}

// WithActionsEnabled switches bulk actions on or off for every list view
func WithActionsEnabled(enabled bool) Option {
	return func(c *Config) {
		c.ActionsEnabled = enabled
	}
}

// New creates a new BackOffice instance with the given adapter and auth configuration
func New(adapter Adapter, authConfig auth.AuthConfig, opts ...Option) *BackOffice {
	config := &Config{
		BasePath:       "/admin",
		Title:          "BackOffice Admin",
		ItemsPerPage:   DefaultPageSize,
		Middleware:     []func(http.Handler) http.Handler{},
		Auth:           &authConfig,
		ActionsEnabled: true,
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Permissions == nil {
		if authConfig.Enabled {
			config.Permissions = auth.RolePermissions{"admin": {auth.Wildcard}}
		} else {
			config.Permissions = auth.AllowAll
		}
	}

	return &BackOffice{
		adapter:       adapter,
		resources:     make(map[string]*Resource),
		resourceOrder: make([]string, 0),
		listKind:      NewViewKind("ListView"),
		config:        config,
	}
}

// RegisterResource registers a new resource with the admin panel
func (bo *BackOffice) RegisterResource(model any) *ResourceBuilder {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() != reflect.Ptr || modelType.Elem().Kind() != reflect.Struct {
		panic("RegisterResource expects a pointer to a struct")
	}

	resourceName := modelType.Elem().Name()

	resource := &Resource{
		Name:        resourceName,
		DisplayName: generateDisplayName(resourceName),
		PluralName:  generatePluralName(resourceName),
		Model:       model,
		ModelType:   modelType,
		TableName:   generateTableName(resourceName),
		Selectable:  true,
		Kind:        bo.listKind.Extend(resourceName + "ListView"),
	}

	if err := resource.DiscoverPrimaryKey(); err != nil {
		panic(fmt.Sprintf("Failed to register %s: %v", resourceName, err))
	}

	bo.resources[resourceName] = resource
	bo.resourceOrder = append(bo.resourceOrder, resourceName)

	bo.config.Logger.Debug("resource registered",
		zap.String("resource", resourceName),
		zap.String("table", resource.TableName))

	return &ResourceBuilder{
		backoffice: bo,
		resource:   resource,
	}
}

// GetResource retrieves a registered resource by name
func (bo *BackOffice) GetResource(name string) (*Resource, bool) {
	resource, exists := bo.resources[name]
	return resource, exists
}

// GetResources returns all registered resources in registration order
func (bo *BackOffice) GetResources() []*Resource {
	ordered := make([]*Resource, 0, len(bo.resourceOrder))
	for _, name := range bo.resourceOrder {
		if resource, exists := bo.resources[name]; exists {
			ordered = append(ordered, resource)
		}
	}
	return ordered
}

// ListKind returns the site-wide list view kind every resource kind extends
func (bo *BackOffice) ListKind() *ViewKind {
	return bo.listKind
}

// GetConfig returns the configuration
func (bo *BackOffice) GetConfig() *Config {
	return bo.config
}

// GetAdapter returns the adapter
func (bo *BackOffice) GetAdapter() Adapter {
	return bo.adapter
}

// GetAuth returns the authentication configuration
func (bo *BackOffice) GetAuth() *auth.AuthConfig {
	return bo.config.Auth
}

// Logger returns the structured logger
func (bo *BackOffice) Logger() *zap.Logger {
	return bo.config.Logger
}

// ActionsFor builds the action registry of a list view for the current request
func (bo *BackOffice) ActionsFor(v View) *Registry {
	if !bo.config.ActionsEnabled {
		return EmptyRegistry()
	}
	return BuildRegistry(v, bo.config.BaselineActions, bo.config.Permissions)
}

// ResourceBuilder provides fluent API for resource configuration
type ResourceBuilder struct {
	backoffice *BackOffice
	resource   *Resource
}

// WithName sets a custom display name for the resource
func (rb *ResourceBuilder) WithName(name string) *ResourceBuilder {
	rb.resource.DisplayName = name
	return rb
}

// WithPluralName sets a custom plural name for the resource
func (rb *ResourceBuilder) WithPluralName(name string) *ResourceBuilder {
	rb.resource.PluralName = name
	return rb
}

// WithTableName overrides the table name derived from the type name
func (rb *ResourceBuilder) WithTableName(name string) *ResourceBuilder {
	rb.resource.TableName = name
	return rb
}

// Hidden sets whether the resource should be hidden from the admin panel
func (rb *ResourceBuilder) Hidden(hidden bool) *ResourceBuilder {
	rb.resource.Hidden = hidden
	return rb
}

// ReadOnly sets whether the resource should be read-only
func (rb *ResourceBuilder) ReadOnly(readOnly bool) *ResourceBuilder {
	rb.resource.ReadOnly = readOnly
	return rb
}

// Selectable sets whether list rows can be selected for bulk actions
func (rb *ResourceBuilder) Selectable(selectable bool) *ResourceBuilder {
	rb.resource.Selectable = selectable
	return rb
}

// WithDefaultSort sets the default sorting for the resource
func (rb *ResourceBuilder) WithDefaultSort(field string, direction SortDirection) *ResourceBuilder {
	rb.resource.DefaultSort = SortField{
		Field:     field,
		Direction: direction,
	}
	return rb
}

// WithViewKind re-parents the resource's list view kind onto parent, so the
// resource inherits parent's chain of declared actions instead of the site default
func (rb *ResourceBuilder) WithViewKind(parent *ViewKind) *ResourceBuilder {
	kind := parent.Extend(rb.resource.Name + "ListView")
	kind.Actions = rb.resource.Kind.Actions
	kind.methods = rb.resource.Kind.methods
	kind.disabled = rb.resource.Kind.disabled
	rb.resource.Kind = kind
	return rb
}

// WithActions declares bulk actions on the resource's own list view kind
func (rb *ResourceBuilder) WithActions(entries ...ActionEntry) *ResourceBuilder {
	rb.resource.Kind.WithActions(entries...)
	return rb
}

// WithActionMethod registers a named method on the resource's list view kind
// and declares it as an action
func (rb *ResourceBuilder) WithActionMethod(name string, fn ActionFunc) *ResourceBuilder {
	rb.resource.Kind.WithMethod(name, fn)
	rb.resource.Kind.WithActions(Method(name))
	return rb
}

// DisableActions turns bulk actions off for the resource's list view
func (rb *ResourceBuilder) DisableActions() *ResourceBuilder {
	rb.resource.Kind.DisableActions()
	return rb
}

// Helper functions for generating names
func generateDisplayName(name string) string {
	// Convert CamelCase to "Display Name"
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func generatePluralName(name string) string {
	return pluralize(generateDisplayName(name))
}

func generateTableName(name string) string {
	return pluralize(strcase.ToSnake(name))
}

// Basic pluralization - can be enhanced later
func pluralize(word string) string {
	if strings.HasSuffix(word, "y") {
		return strings.TrimSuffix(word, "y") + "ies"
	}
	if strings.HasSuffix(word, "s") || strings.HasSuffix(word, "x") ||
		strings.HasSuffix(word, "z") || strings.HasSuffix(word, "ch") ||
		strings.HasSuffix(word, "sh") {
		return word + "es"
	}
	return word + "s"
}
