package synth

import (
	"strings"

	scafferrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/identity"
	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/typeref"
)

// Provider is the identity-token provider segment for this synthesizer.
const Provider = "scaffold.synth"

// operation enumerates the five simple delegate lifecycle actions.
type operation int

const (
	opCommit operation = iota
	opRemove
	opFlush
	opDiscard
	opMerge
)

// Config carries the inputs for one type's synthesis pass.
type Config struct {
	// Identity is the declaring-type identity token for synthesized members.
	Identity string
	// View is the read-only member snapshot of the type. A nil view means
	// the type is absent from the underlying source; synthesis then yields
	// an explicit invalid result instead of a partial one.
	View models.TypeStructureView
	// Spec is the behavior configuration. Required.
	Spec *models.BehaviorSpec
	// Parent links to the supertype's synthesizer, or nil for chain roots.
	Parent *Synthesizer
}

// Result is the ordered set of newly-needed members for one type, plus the
// named custom finders carried through from configuration. Output is
// all-or-nothing: on any fatal error no Result is produced for the type.
type Result struct {
	// Valid is false when the type was absent from the underlying source.
	Valid bool
	// HandleField is the infrastructure handle, present only on the
	// structure that owns it for its inheritance chain.
	HandleField *models.Field
	// Methods are the synthesized (or verbatim-reused) methods in order.
	Methods []models.Method
	// Finders are the named custom finder descriptors, unchanged.
	Finders []string
	// Tags carries result-level capability tags for downstream passes.
	Tags models.TagSet
}

// Synthesizer computes the incremental member set for one type. It is a pure
// function of its immutable inputs; the only internal state is memoization of
// the chain-owned handle.
type Synthesizer struct {
	id     string
	view   models.TypeStructureView
	spec   *models.BehaviorSpec
	parent *Synthesizer

	entity  typeref.TypeRef
	idField models.Field
	plural  string
	valid   bool

	handle *models.Field // memoized chain-owned handle, set on the owning root
}

// New validates the synthesis preconditions and builds a synthesizer.
// Missing identifier member, missing plural display name, missing spec and an
// invalid identity token are all fatal before any synthesis is attempted.
func New(cfg Config) (*Synthesizer, error) {
	loc := scafferrors.MemberLocation{Identity: cfg.Identity}

	if !identity.IsValid(Provider, cfg.Identity) {
		return nil, scafferrors.Newf(scafferrors.ConfigurationErrorCode,
			"declaring-type identity token %q is not valid for provider %q", cfg.Identity, Provider).
			WithLocation(loc)
	}
	if cfg.Spec == nil {
		return nil, scafferrors.New(scafferrors.ConfigurationErrorCode, "behavior spec is required").
			WithLocation(loc)
	}

	entity, err := identity.TypeOf(cfg.Identity)
	if err != nil {
		return nil, scafferrors.Wrap(scafferrors.ConfigurationErrorCode,
			"cannot read entity type from identity token", err).WithLocation(loc)
	}

	s := &Synthesizer{
		id:     cfg.Identity,
		view:   cfg.View,
		spec:   cfg.Spec,
		parent: cfg.Parent,
		entity: entity,
	}
	if cfg.View == nil {
		// Type absent from the underlying source: constructible, but
		// synthesis yields an explicit invalid result.
		return s, nil
	}

	plural := strings.TrimSpace(cfg.Spec.DisplayNamePlural)
	if plural == "" {
		return nil, scafferrors.New(scafferrors.ConfigurationErrorCode,
			"plural display name is required").WithLocation(loc)
	}
	s.plural = capitalize(plural)

	idField := identifierField(cfg.View)
	if idField == nil {
		return nil, scafferrors.Newf(scafferrors.ConfigurationErrorCode,
			"type %s has no identifier member (no field carries %s)", entity.Simple(), models.DirectiveID).
			WithLocation(loc)
	}
	s.idField = *idField
	s.valid = true
	return s, nil
}

// Identity returns the synthesizer's declaring-type identity token.
func (s *Synthesizer) Identity() string {
	return s.id
}

// Synthesize computes the ordered new-member set. Re-running against the same
// view and spec yields member-for-member identical output.
func (s *Synthesizer) Synthesize() (Result, error) {
	if !s.valid {
		return Result{Valid: false}, nil
	}

	res := Result{Valid: true, Tags: models.TagSet{}}

	handle, owned, err := s.handleField()
	if err != nil {
		return Result{}, err
	}
	if owned {
		f := handle.Clone()
		res.HandleField = &f
	}

	type delegateSpec struct {
		op   operation
		name string
	}
	delegates := []delegateSpec{
		{opCommit, s.spec.CommitMethodName},
		{opRemove, s.spec.RemoveMethodName},
		{opFlush, s.spec.FlushMethodName},
		{opDiscard, s.spec.DiscardMethodName},
		{opMerge, s.spec.MergeMethodName},
	}
	for _, d := range delegates {
		m, err := s.delegateMethod(d.op, d.name, handle.Name)
		if err != nil {
			return Result{}, err
		}
		if m != nil {
			res.Methods = append(res.Methods, *m)
		}
	}

	statics := []func() (*models.Method, error){
		s.countMethod,
		s.findAllMethod,
		s.findMethod,
		s.findPagedMethod,
	}
	for _, build := range statics {
		m, err := build()
		if err != nil {
			return Result{}, err
		}
		if m != nil {
			res.Methods = append(res.Methods, *m)
		}
	}

	res.Finders = append([]string(nil), s.spec.NamedFinders...)
	res.Tags[models.TagNamedFinders] = res.Finders
	return res, nil
}

// handleField resolves the chain-owned infrastructure handle. Exactly one
// structure per inheritance chain declares it; descendants reuse the owner's
// field by name. The chain is walked iteratively with cycle detection keyed
// by declaring-type identity, and the resolved field is memoized on the root.
func (s *Synthesizer) handleField() (models.Field, bool, error) {
	root, err := s.chainRoot()
	if err != nil {
		return models.Field{}, false, err
	}
	if root.handle == nil {
		if root.view == nil {
			return models.Field{}, false, scafferrors.Newf(scafferrors.ConfigurationErrorCode,
				"chain root %s is absent from the underlying source", root.id).
				WithLocation(scafferrors.MemberLocation{Identity: s.id})
		}
		f := ResolveHandleField(root.view, HandleFieldBase, ManagerType, root.spec.UnitOfWorkQualifier, root.id)
		root.handle = &f
	}
	return *root.handle, root == s, nil
}

// chainRoot walks the parent links to the owning ancestor, failing on cycles.
func (s *Synthesizer) chainRoot() (*Synthesizer, error) {
	seen := map[string]bool{s.id: true}
	cur := s
	for cur.parent != nil {
		next := cur.parent
		if seen[next.id] {
			return nil, scafferrors.Newf(scafferrors.ConfigurationErrorCode,
				"inheritance chain of %s contains a cycle at %s", s.id, next.id).
				WithLocation(scafferrors.MemberLocation{Identity: s.id})
		}
		seen[next.id] = true
		cur = next
	}
	return cur, nil
}

// ancestorProvides reports whether any ancestor's configuration enables the
// given delegate operation, in which case that ancestor owns the member and
// this type must not redeclare it.
func (s *Synthesizer) ancestorProvides(op operation) bool {
	for cur := s.parent; cur != nil; cur = cur.parent {
		if cur.delegateName(op) != models.Disabled {
			return true
		}
	}
	return false
}

// opTag maps a delegate operation to the capability tag the tagging pass
// applies to its member.
func opTag(op operation) string {
	switch op {
	case opCommit:
		return models.TagCommit
	case opRemove:
		return models.TagRemove
	case opFlush:
		return models.TagFlush
	case opDiscard:
		return models.TagDiscard
	default:
		return models.TagMerge
	}
}

func (s *Synthesizer) delegateName(op operation) string {
	switch op {
	case opCommit:
		return s.spec.CommitMethodName
	case opRemove:
		return s.spec.RemoveMethodName
	case opFlush:
		return s.spec.FlushMethodName
	case opDiscard:
		return s.spec.DiscardMethodName
	default:
		return s.spec.MergeMethodName
	}
}

// delegateMethod synthesizes one of the five lifecycle delegates, or reuses
// the user's zero-argument method of the same name verbatim. The user method
// wins with any body and any return shape.
func (s *Synthesizer) delegateMethod(op operation, name, handleName string) (*models.Method, error) {
	if name == models.Disabled {
		return nil, nil
	}
	if s.ancestorProvides(op) {
		return nil, nil
	}
	if user := s.view.MethodNamed(name, nil); user != nil {
		tagMember(&user.Tags, opTag(op))
		return user, nil
	}

	recv := receiverVar(s.entity)
	body := &bodyBuilder{}
	body.lazyInit(recv, handleName)

	m := models.Method{
		DeclaredBy:  s.id,
		Name:        name,
		Modifiers:   models.ModPublic,
		Annotations: []models.Annotation{s.txAnnotation(op == opCommit)},
		Tags:        models.TagSet{opTag(op): nil},
	}

	switch op {
	case opCommit:
		body.line("%s.%s.Persist(%s)", recv, handleName, recv)
	case opRemove:
		// A detached instance is re-fetched by identifier before removal.
		body.line("if %s.%s.Contains(%s) {", recv, handleName, recv)
		body.in()
		body.line("%s.%s.Remove(%s)", recv, handleName, recv)
		body.out()
		body.line("} else {")
		body.in()
		body.line("attached := %s(%s.%s)", s.findMethodName(), recv, s.idField.Name)
		body.line("%s.%s.Remove(attached)", recv, handleName)
		body.out()
		body.line("}")
	case opFlush:
		body.line("%s.%s.Flush()", recv, handleName)
	case opDiscard:
		body.line("%s.%s.Clear()", recv, handleName)
	case opMerge:
		ret := s.entity
		m.Returns = &ret
		body.line("merged := %s.%s.Merge(%s)", recv, handleName, recv)
		body.line("%s.%s.Flush()", recv, handleName)
		body.line("return merged.(%s)", s.entity.Simple())
	}

	m.Body = body.String()
	return &m, nil
}

// countMethod synthesizes the count query. Count can never be disabled.
func (s *Synthesizer) countMethod() (*models.Method, error) {
	name := s.spec.CountName() + s.plural
	ret := typeref.Int64

	if m, reused, err := s.userStatic(name, nil, ret, models.TagCount); reused || err != nil {
		return m, err
	}

	body := &bodyBuilder{}
	if s.spec.AlternateRuntimeProfile {
		body.line("return store.Attach().Count(%q)", s.entity.Simple())
	} else {
		body.line("return store.CountOf[%s](store.Attach())", s.entity.Simple())
	}
	m := s.staticMethod(name, nil, &ret, body.String(), models.TagCount)
	return &m, nil
}

// findAllMethod synthesizes the list-all query, honoring the disabled sentinel.
func (s *Synthesizer) findAllMethod() (*models.Method, error) {
	if s.spec.FindAllMethodName == models.Disabled {
		return nil, nil
	}
	name := s.spec.FindAllMethodName + s.plural
	ret := typeref.SliceOf(s.entity)

	if m, reused, err := s.userStatic(name, nil, ret, models.TagFindAll); reused || err != nil {
		return m, err
	}

	body := &bodyBuilder{}
	m := s.staticMethod(name, nil, &ret, "", models.TagFindAll)
	if s.spec.AlternateRuntimeProfile {
		body.line("return store.Attach().All(%q).([]%s)", s.entity.Simple(), s.entity.Simple())
		m.Annotations = append(m.Annotations, models.Annotation{Directive: models.DirectiveNoLint})
	} else {
		body.line("return store.AllOf[%s](store.Attach())", s.entity.Simple())
	}
	m.Body = body.String()
	return &m, nil
}

// findMethod synthesizes find-by-identifier, honoring the disabled sentinel.
// Null reference identifiers and empty text identifiers short-circuit to
// not-found without issuing a lookup, and a no-matching-row failure is
// translated into a not-found result.
func (s *Synthesizer) findMethod() (*models.Method, error) {
	if s.spec.FindMethodName == models.Disabled {
		return nil, nil
	}
	name := s.findMethodName()
	params := []models.Param{{Name: s.idField.Name, Type: s.idField.Type}}
	ret := s.entity

	if m, reused, err := s.userStatic(name, params, ret, models.TagFind); reused || err != nil {
		return m, err
	}

	body := &bodyBuilder{}
	s.identifierGuard(body)
	if s.spec.AlternateRuntimeProfile {
		body.line("found, err := store.Attach().Find(%q, %s)", s.entity.Simple(), s.idField.Name)
	} else {
		body.line("found, err := store.FindOf[%s](store.Attach(), %s)", s.entity.Simple(), s.idField.Name)
	}
	body.line("if errors.Is(err, store.ErrNoRows) {")
	body.in()
	body.line("return nil")
	body.out()
	body.line("}")
	if s.spec.AlternateRuntimeProfile {
		body.line("return found.(%s)", s.entity.Simple())
	} else {
		body.line("return found")
	}

	m := s.staticMethod(name, params, &ret, body.String(), models.TagFind)
	return &m, nil
}

// findPagedMethod synthesizes the paginated list query with explicit
// offset/limit parameters and no implicit ordering guarantee.
func (s *Synthesizer) findPagedMethod() (*models.Method, error) {
	if s.spec.FindPagedMethodName == models.Disabled {
		return nil, nil
	}
	name := s.spec.FindPagedMethodName + s.entity.Simple() + "Entries"
	params := []models.Param{
		{Name: "firstResult", Type: typeref.Int},
		{Name: "maxResults", Type: typeref.Int},
	}
	ret := typeref.SliceOf(s.entity)

	if m, reused, err := s.userStatic(name, params, ret, models.TagFindPaged); reused || err != nil {
		return m, err
	}

	body := &bodyBuilder{}
	m := s.staticMethod(name, params, &ret, "", models.TagFindPaged)
	if s.spec.AlternateRuntimeProfile {
		body.line("return store.Attach().Page(%q, firstResult, maxResults).([]%s)", s.entity.Simple(), s.entity.Simple())
		m.Annotations = append(m.Annotations, models.Annotation{Directive: models.DirectiveNoLint})
	} else {
		body.line("return store.PageOf[%s](store.Attach(), firstResult, maxResults)", s.entity.Simple())
	}
	m.Body = body.String()
	return &m, nil
}

// userStatic looks up a user-declared method matching name and signature.
// When present its return shape must satisfy the generated contract; a
// mismatch is fatal for the type rather than silently shadowing the member.
func (s *Synthesizer) userStatic(name string, params []models.Param, want typeref.TypeRef, tag string) (*models.Method, bool, error) {
	user := s.view.MethodNamed(name, paramTypes(params))
	if user == nil {
		return nil, false, nil
	}
	if user.Returns == nil || !user.Returns.Equal(want) {
		return nil, false, scafferrors.Newf(scafferrors.ContractMismatchErrorCode,
			"user-declared method %s on %s must return %s", user.Signature(), s.entity.Simple(), want.String()).
			WithLocation(scafferrors.MemberLocation{Identity: s.id, Member: user.Signature()}).
			WithSuggestion("rename the method or change its return type to match the generated contract")
	}
	tagMember(&user.Tags, tag)
	return user, true, nil
}

func (s *Synthesizer) staticMethod(name string, params []models.Param, ret *typeref.TypeRef, body, tag string) models.Method {
	m := models.Method{
		DeclaredBy: s.id,
		Name:       name,
		Params:     params,
		Returns:    ret,
		Modifiers:  models.ModPublic | models.ModStatic,
		Body:       body,
		Tags:       models.TagSet{tag: nil},
	}
	if s.spec.SecondaryStoreProfile {
		m.Annotations = append(m.Annotations, s.txAnnotation(false))
	}
	return m
}

// identifierGuard emits the not-found short-circuit for nullable and text
// identifiers. Primitive non-text identifiers need no guard.
func (s *Synthesizer) identifierGuard(body *bodyBuilder) {
	switch {
	case s.idField.Type.IsText():
		body.line("if %s == \"\" {", s.idField.Name)
	case !s.idField.Type.IsPrimitive():
		body.line("if %s == nil {", s.idField.Name)
	default:
		return
	}
	body.in()
	body.line("return nil")
	body.out()
	body.line("}")
}

// txAnnotation builds the demarcated unit-of-work marker. Only commit-new
// under the secondary store profile forces an independent unit of work.
func (s *Synthesizer) txAnnotation(isCommit bool) models.Annotation {
	ann := models.Annotation{Directive: models.DirectiveTx}
	attrs := map[string]string{}
	if s.spec.UnitOfWorkQualifier != "" {
		attrs["manager"] = s.spec.UnitOfWorkQualifier
	}
	if isCommit && s.spec.SecondaryStoreProfile {
		attrs["propagation"] = models.PropagationNested
	}
	if len(attrs) > 0 {
		ann.Attributes = attrs
	}
	return ann
}

// findMethodName composes the find-by-identifier name, falling back to the
// default base when the operation is disabled: the remove delegate still
// needs a name for its re-fetch path.
func (s *Synthesizer) findMethodName() string {
	base := s.spec.FindMethodName
	if base == models.Disabled {
		base = models.DefaultFindName
	}
	return base + s.entity.Simple()
}

func tagMember(tags *models.TagSet, key string) {
	if *tags == nil {
		*tags = models.TagSet{}
	}
	(*tags)[key] = nil
}

func identifierField(view models.TypeStructureView) *models.Field {
	for _, f := range view.Fields() {
		if models.AnnotationNamed(f.Annotations, models.DirectiveID) != nil {
			g := f.Clone()
			return &g
		}
	}
	return nil
}

func paramTypes(params []models.Param) []typeref.TypeRef {
	if len(params) == 0 {
		return nil
	}
	types := make([]typeref.TypeRef, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return types
}

func receiverVar(t typeref.TypeRef) string {
	name := t.Simple()
	if name == "" {
		return "e"
	}
	return strings.ToLower(name[:1])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
