package models

// Disabled is the sentinel marking a generated operation as unwanted.
const Disabled = ""

// Default operation base names. Query method names are composed with the
// entity's simple or plural display name by the synthesizer.
const (
	DefaultCommitName    = "persist"
	DefaultRemoveName    = "remove"
	DefaultFlushName     = "flush"
	DefaultDiscardName   = "clear"
	DefaultMergeName     = "merge"
	DefaultCountName     = "count"
	DefaultFindAllName   = "findAll"
	DefaultFindName      = "find"
	DefaultFindPagedName = "find"
)

// BehaviorSpec is the per-type configuration of desired generated operations.
// An empty method name disables that operation, except CountMethodName which
// can never be disabled and falls back to its default.
type BehaviorSpec struct {
	CommitMethodName    string `json:"commit_method_name"`
	RemoveMethodName    string `json:"remove_method_name"`
	FlushMethodName     string `json:"flush_method_name"`
	DiscardMethodName   string `json:"discard_method_name"`
	MergeMethodName     string `json:"merge_method_name"`
	CountMethodName     string `json:"count_method_name"`
	FindAllMethodName   string `json:"find_all_method_name"`
	FindMethodName      string `json:"find_method_name"`
	FindPagedMethodName string `json:"find_paged_method_name"`

	// UnitOfWorkQualifier names the unit-of-work manager synthesized
	// operations should run under. Empty means the default manager.
	UnitOfWorkQualifier string `json:"unit_of_work_qualifier,omitempty"`

	// NamedFinders are custom finder descriptors carried through to the
	// emission collaborator unchanged.
	NamedFinders []string `json:"named_finders,omitempty"`

	// AlternateRuntimeProfile selects the raw query dialect, which casts
	// results explicitly and carries a warning-suppression marker.
	AlternateRuntimeProfile bool `json:"alternate_runtime_profile,omitempty"`

	// SecondaryStoreProfile forces commit-new into an independent unit of
	// work and marks query operations transactional.
	SecondaryStoreProfile bool `json:"secondary_store_profile,omitempty"`

	// DisplayNamePlural is the plural display name used to compose query
	// method names. Required.
	DisplayNamePlural string `json:"display_name_plural"`
}

// DefaultBehaviorSpec returns a spec with every operation enabled under its
// conventional name.
func DefaultBehaviorSpec(plural string) *BehaviorSpec {
	return &BehaviorSpec{
		CommitMethodName:    DefaultCommitName,
		RemoveMethodName:    DefaultRemoveName,
		FlushMethodName:     DefaultFlushName,
		DiscardMethodName:   DefaultDiscardName,
		MergeMethodName:     DefaultMergeName,
		CountMethodName:     DefaultCountName,
		FindAllMethodName:   DefaultFindAllName,
		FindMethodName:      DefaultFindName,
		FindPagedMethodName: DefaultFindPagedName,
		DisplayNamePlural:   plural,
	}
}

// CountName returns the count operation's base name. Count is never
// disableable: an empty configured name falls back to the default.
func (s *BehaviorSpec) CountName() string {
	if s.CountMethodName == Disabled {
		return DefaultCountName
	}
	return s.CountMethodName
}
