package models

// Logger receives the validator's fallback warnings.
type Logger interface {
	Warnf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Reason records which path GetValidatedModel took.
type Reason string

const (
	// ReasonDefaulted means the input was empty.
	ReasonDefaulted Reason = "defaulted"
	// ReasonResolved means the input named an allowed catalog entry.
	ReasonResolved Reason = "resolved"
	// ReasonUnknown means the input matched no catalog entry.
	ReasonUnknown Reason = "unknown"
	// ReasonBanned means the input matched a banned generic name.
	ReasonBanned Reason = "banned"
)

// Validator turns arbitrary input into a canonical, allowed model name.
type Validator struct {
	catalog  *Catalog
	resolver *Resolver
	policy   *Policy
	logger   Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithPolicy overrides the banned-name policy.
func WithPolicy(p *Policy) ValidatorOption {
	return func(v *Validator) { v.policy = p }
}

// WithLogger sets the logger that receives fallback warnings.
func WithLogger(l Logger) ValidatorOption {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewValidator creates a validator over c.
func NewValidator(c *Catalog, opts ...ValidatorOption) *Validator {
	v := &Validator{
		catalog:  c,
		resolver: NewResolver(c),
		policy:   DefaultPolicy(),
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Catalog returns the catalog the validator resolves against.
func (v *Validator) Catalog() *Catalog {
	return v.catalog
}

// Validate resolves raw and reports why the returned entry was chosen.
// The returned entry is always a real, allowed catalog model.
func (v *Validator) Validate(raw string) (ModelConfig, Reason) {
	def := v.catalog.Default()

	if normalize(raw) == "" {
		return def, ReasonDefaulted
	}

	m, ok := v.resolver.Resolve(raw)
	if !ok {
		v.logger.Warnf("unknown model %q, falling back to %s", raw, def.Name)
		return def, ReasonUnknown
	}

	if !v.policy.IsAllowed(raw) || !v.policy.IsAllowed(m.Name) {
		v.logger.Warnf("model %q is a generic name and cannot be selected, falling back to %s", raw, def.Name)
		return def, ReasonBanned
	}

	return m, ReasonResolved
}

// GetValidatedModel returns the canonical name for raw, or the default model's
// name when raw is empty, unknown or banned. It never fails.
func (v *Validator) GetValidatedModel(raw string) string {
	m, _ := v.Validate(raw)
	return m.Name
}
