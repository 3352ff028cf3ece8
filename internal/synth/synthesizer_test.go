package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scafferrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/identity"
	"github.com/toyz/scaffold/internal/models"
	"github.com/toyz/scaffold/internal/typeref"
)

var petType = typeref.Named("example.com/app", "Pet")

func petIdentity() string {
	return identity.Create(Provider, "src/main", petType)
}

func petView(extra ...interface{}) models.TypeStructureView {
	cfg := models.StructureConfig{
		Identity: petIdentity(),
		Type:     petType,
		Fields: []models.Field{{
			DeclaredBy:  petIdentity(),
			Name:        "id",
			Type:        typeref.Int,
			Modifiers:   models.ModPrivate,
			Annotations: []models.Annotation{{Directive: models.DirectiveID}},
		}},
	}
	for _, e := range extra {
		switch m := e.(type) {
		case models.Field:
			cfg.Fields = append(cfg.Fields, m)
		case models.Method:
			cfg.Methods = append(cfg.Methods, m)
		}
	}
	return models.NewDeclaredStructure(cfg)
}

func methodNames(methods []models.Method) []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	return names
}

func methodNamed(t *testing.T, methods []models.Method, name string) models.Method {
	t.Helper()
	for _, m := range methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("no synthesized method named %q", name)
	return models.Method{}
}

func TestSynthesizeBaselineSet(t *testing.T) {
	spec := &models.BehaviorSpec{
		CommitMethodName:  "persist",
		CountMethodName:   "count",
		FindMethodName:    "find",
		DisplayNamePlural: "pets",
	}
	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
	require.NoError(t, err)

	res, err := s.Synthesize()
	require.NoError(t, err)
	assert.True(t, res.Valid)

	require.NotNil(t, res.HandleField)
	assert.Equal(t, "storeManager", res.HandleField.Name)
	assert.True(t, res.HandleField.Type.Equal(ManagerType))

	assert.Equal(t, []string{"persist", "countPets", "findPet"}, methodNames(res.Methods))

	count := methodNamed(t, res.Methods, "countPets")
	assert.Empty(t, count.Params)
	require.NotNil(t, count.Returns)
	assert.True(t, count.Returns.Equal(typeref.Int64))
	assert.True(t, count.Modifiers.Has(models.ModStatic))

	find := methodNamed(t, res.Methods, "findPet")
	require.Len(t, find.Params, 1)
	assert.Equal(t, "id", find.Params[0].Name)
	assert.True(t, find.Params[0].Type.Equal(typeref.Int))
	require.NotNil(t, find.Returns)
	assert.True(t, find.Returns.Equal(petType))
}

func TestSynthesizeDefaultOrder(t *testing.T) {
	s, err := New(Config{
		Identity: petIdentity(),
		View:     petView(),
		Spec:     models.DefaultBehaviorSpec("pets"),
	})
	require.NoError(t, err)

	res, err := s.Synthesize()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"persist", "remove", "flush", "clear", "merge",
		"countPets", "findAllPets", "findPet", "findPetEntries",
	}, methodNames(res.Methods))

	merge := methodNamed(t, res.Methods, "merge")
	require.NotNil(t, merge.Returns)
	assert.True(t, merge.Returns.Equal(petType))
	assert.Contains(t, merge.Body, "return merged.(Pet)")

	paged := methodNamed(t, res.Methods, "findPetEntries")
	require.Len(t, paged.Params, 2)
	assert.Equal(t, "firstResult", paged.Params[0].Name)
	assert.Equal(t, "maxResults", paged.Params[1].Name)
}

func TestCountNeverDisabled(t *testing.T) {
	spec := models.DefaultBehaviorSpec("pets")
	spec.CountMethodName = models.Disabled

	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	assert.Contains(t, methodNames(res.Methods), "countPets")
}

func TestDisabledOperationsOmitted(t *testing.T) {
	spec := &models.BehaviorSpec{DisplayNamePlural: "pets"}

	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	assert.Equal(t, []string{"countPets"}, methodNames(res.Methods),
		"everything but the non-disableable count stays out")
	assert.NotNil(t, res.HandleField, "the chain handle is owned regardless")
}

func TestUserDelegateReusedVerbatim(t *testing.T) {
	user := models.Method{
		DeclaredBy: petIdentity(),
		Name:       "persist",
		Modifiers:  models.ModPublic,
		Body:       "audit()\n",
	}
	s, err := New(Config{
		Identity: petIdentity(),
		View:     petView(user),
		Spec:     models.DefaultBehaviorSpec("pets"),
	})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	persist := methodNamed(t, res.Methods, "persist")
	assert.Equal(t, "audit()\n", persist.Body)
	assert.Empty(t, persist.Annotations, "a reused user method is not re-annotated")
}

func TestUserQueryContractMismatch(t *testing.T) {
	ret := typeref.String
	clash := models.Method{
		DeclaredBy: petIdentity(),
		Name:       "countPets",
		Returns:    &ret,
		Modifiers:  models.ModPublic | models.ModStatic,
	}
	s, err := New(Config{
		Identity: petIdentity(),
		View:     petView(clash),
		Spec:     models.DefaultBehaviorSpec("pets"),
	})
	require.NoError(t, err)

	res, err := s.Synthesize()
	require.Error(t, err)
	assert.True(t, scafferrors.HasCode(err, scafferrors.ContractMismatchErrorCode))
	assert.Equal(t, Result{}, res, "a contract violation yields no partial output")
}

func TestUserQueryMatchingContractReused(t *testing.T) {
	ret := typeref.Int64
	user := models.Method{
		DeclaredBy: petIdentity(),
		Name:       "countPets",
		Returns:    &ret,
		Modifiers:  models.ModPublic | models.ModStatic,
		Body:       "return cached\n",
	}
	s, err := New(Config{
		Identity: petIdentity(),
		View:     petView(user),
		Spec:     models.DefaultBehaviorSpec("pets"),
	})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	count := methodNamed(t, res.Methods, "countPets")
	assert.Equal(t, "return cached\n", count.Body)
}

func TestIdentifierGuards(t *testing.T) {
	cases := []struct {
		name    string
		idType  typeref.TypeRef
		guarded string
	}{
		{"text", typeref.String, `if id == "" {`},
		{"reference", typeref.Named("example.com/app", "PetID"), "if id == nil {"},
		{"primitive", typeref.Int, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := models.NewDeclaredStructure(models.StructureConfig{
				Identity: petIdentity(),
				Type:     petType,
				Fields: []models.Field{{
					DeclaredBy:  petIdentity(),
					Name:        "id",
					Type:        tc.idType,
					Annotations: []models.Annotation{{Directive: models.DirectiveID}},
				}},
			})
			s, err := New(Config{Identity: petIdentity(), View: view, Spec: models.DefaultBehaviorSpec("pets")})
			require.NoError(t, err)
			res, err := s.Synthesize()
			require.NoError(t, err)

			find := methodNamed(t, res.Methods, "findPet")
			if tc.guarded == "" {
				assert.NotContains(t, find.Body, "if id ==")
			} else {
				assert.Contains(t, find.Body, tc.guarded)
				assert.Contains(t, find.Body, "return nil")
			}
		})
	}
}

func TestRemoveRefetchesDetached(t *testing.T) {
	spec := models.DefaultBehaviorSpec("pets")
	spec.FindMethodName = models.Disabled

	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	remove := methodNamed(t, res.Methods, "remove")
	assert.Contains(t, remove.Body, "attached := findPet(p.id)",
		"the re-fetch path uses the conventional finder name even when find is disabled")
	assert.NotContains(t, methodNames(res.Methods), "findPet")
}

func TestDialects(t *testing.T) {
	typed, err := New(Config{Identity: petIdentity(), View: petView(), Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)
	typedRes, err := typed.Synthesize()
	require.NoError(t, err)

	rawSpec := models.DefaultBehaviorSpec("pets")
	rawSpec.AlternateRuntimeProfile = true
	raw, err := New(Config{Identity: petIdentity(), View: petView(), Spec: rawSpec})
	require.NoError(t, err)
	rawRes, err := raw.Synthesize()
	require.NoError(t, err)

	assert.Contains(t, methodNamed(t, typedRes.Methods, "countPets").Body,
		"store.CountOf[Pet](store.Attach())")
	assert.Contains(t, methodNamed(t, rawRes.Methods, "countPets").Body,
		`store.Attach().Count("Pet")`)

	typedAll := methodNamed(t, typedRes.Methods, "findAllPets")
	assert.Contains(t, typedAll.Body, "store.AllOf[Pet](store.Attach())")
	assert.Nil(t, models.AnnotationNamed(typedAll.Annotations, models.DirectiveNoLint))

	rawAll := methodNamed(t, rawRes.Methods, "findAllPets")
	assert.Contains(t, rawAll.Body, `store.Attach().All("Pet").([]Pet)`)
	assert.NotNil(t, models.AnnotationNamed(rawAll.Annotations, models.DirectiveNoLint))

	rawPaged := methodNamed(t, rawRes.Methods, "findPetEntries")
	assert.NotNil(t, models.AnnotationNamed(rawPaged.Annotations, models.DirectiveNoLint))
	rawCount := methodNamed(t, rawRes.Methods, "countPets")
	assert.Nil(t, models.AnnotationNamed(rawCount.Annotations, models.DirectiveNoLint),
		"the raw count cast needs no suppression marker")
}

func TestUnitOfWorkAnnotations(t *testing.T) {
	spec := models.DefaultBehaviorSpec("pets")
	spec.UnitOfWorkQualifier = "primary"
	spec.SecondaryStoreProfile = true

	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	persist := methodNamed(t, res.Methods, "persist")
	tx := models.AnnotationNamed(persist.Annotations, models.DirectiveTx)
	require.NotNil(t, tx)
	assert.Equal(t, "primary", tx.Attribute("manager"))
	assert.Equal(t, models.PropagationNested, tx.Attribute("propagation"))

	remove := methodNamed(t, res.Methods, "remove")
	tx = models.AnnotationNamed(remove.Annotations, models.DirectiveTx)
	require.NotNil(t, tx)
	assert.Empty(t, tx.Attribute("propagation"), "only commit forces a new unit of work")

	count := methodNamed(t, res.Methods, "countPets")
	assert.NotNil(t, models.AnnotationNamed(count.Annotations, models.DirectiveTx),
		"queries become transactional under the secondary store profile")
}

func TestStaticsUnannotatedByDefault(t *testing.T) {
	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	count := methodNamed(t, res.Methods, "countPets")
	assert.Nil(t, models.AnnotationNamed(count.Annotations, models.DirectiveTx))
}

func TestLazyHandleInitInDelegates(t *testing.T) {
	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	persist := methodNamed(t, res.Methods, "persist")
	assert.True(t, strings.HasPrefix(persist.Body, "if p.storeManager == nil {"))
	assert.Contains(t, persist.Body, "p.storeManager = store.Attach()")
	assert.Contains(t, persist.Body, "p.storeManager.Persist(p)")
}

func TestSynthesizeIdempotent(t *testing.T) {
	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)

	first, err := s.Synthesize()
	require.NoError(t, err)
	second, err := s.Synthesize()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParentChainOwnership(t *testing.T) {
	ownerType := typeref.Named("example.com/app", "Owner")
	ownerID := identity.Create(Provider, "src/main", ownerType)
	ownerView := models.NewDeclaredStructure(models.StructureConfig{
		Identity: ownerID,
		Type:     ownerType,
		Fields: []models.Field{{
			DeclaredBy:  ownerID,
			Name:        "id",
			Type:        typeref.Int,
			Annotations: []models.Annotation{{Directive: models.DirectiveID}},
		}},
	})
	parent, err := New(Config{Identity: ownerID, View: ownerView, Spec: models.DefaultBehaviorSpec("owners")})
	require.NoError(t, err)

	child, err := New(Config{
		Identity: petIdentity(),
		View:     petView(),
		Spec:     models.DefaultBehaviorSpec("pets"),
		Parent:   parent,
	})
	require.NoError(t, err)

	parentRes, err := parent.Synthesize()
	require.NoError(t, err)
	childRes, err := child.Synthesize()
	require.NoError(t, err)

	assert.NotNil(t, parentRes.HandleField)
	assert.Nil(t, childRes.HandleField, "only the chain root declares the handle")

	assert.Equal(t, []string{"persist", "remove", "flush", "clear", "merge"},
		methodNames(parentRes.Methods)[:5])
	assert.Equal(t, []string{"countPets", "findAllPets", "findPet", "findPetEntries"},
		methodNames(childRes.Methods),
		"delegates owned by an ancestor are not redeclared; queries stay per-type")
}

func TestParentChainCycle(t *testing.T) {
	a, err := New(Config{Identity: petIdentity(), View: petView(), Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)
	b, err := New(Config{Identity: petIdentity(), View: petView(), Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)
	a.parent = b
	b.parent = a

	_, err = a.Synthesize()
	require.Error(t, err)
	assert.True(t, scafferrors.HasCode(err, scafferrors.ConfigurationErrorCode))
}

func TestAbsentViewYieldsInvalidResult(t *testing.T) {
	s, err := New(Config{Identity: petIdentity(), View: nil, Spec: models.DefaultBehaviorSpec("pets")})
	require.NoError(t, err)

	res, err := s.Synthesize()
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Nil(t, res.HandleField)
	assert.Empty(t, res.Methods)
}

func TestNewPreconditions(t *testing.T) {
	valid := models.DefaultBehaviorSpec("pets")

	t.Run("nil spec", func(t *testing.T) {
		_, err := New(Config{Identity: petIdentity(), View: petView()})
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.ConfigurationErrorCode))
	})

	t.Run("invalid identity token", func(t *testing.T) {
		_, err := New(Config{Identity: "not-a-token", View: petView(), Spec: valid})
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.ConfigurationErrorCode))
	})

	t.Run("foreign provider", func(t *testing.T) {
		id := identity.Create("other.provider", "src/main", petType)
		_, err := New(Config{Identity: id, View: petView(), Spec: valid})
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.ConfigurationErrorCode))
	})

	t.Run("missing plural", func(t *testing.T) {
		spec := models.DefaultBehaviorSpec("  ")
		_, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.ConfigurationErrorCode))
	})

	t.Run("missing identifier member", func(t *testing.T) {
		bare := models.NewDeclaredStructure(models.StructureConfig{
			Identity: petIdentity(),
			Type:     petType,
		})
		_, err := New(Config{Identity: petIdentity(), View: bare, Spec: valid})
		require.Error(t, err)
		assert.True(t, scafferrors.HasCode(err, scafferrors.ConfigurationErrorCode))
	})
}

func TestFindersCarriedThrough(t *testing.T) {
	spec := models.DefaultBehaviorSpec("pets")
	spec.NamedFinders = []string{"findPetsByNameLike", "findPetsByOwner"}

	s, err := New(Config{Identity: petIdentity(), View: petView(), Spec: spec})
	require.NoError(t, err)
	res, err := s.Synthesize()
	require.NoError(t, err)

	assert.Equal(t, spec.NamedFinders, res.Finders)
	assert.Equal(t, res.Finders, res.Tags[models.TagNamedFinders])
}
