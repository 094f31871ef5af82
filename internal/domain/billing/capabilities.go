package billing

import (
	"errors"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Unlimited marks a slot count with no ceiling.
const Unlimited = -1

// MaxPhotos is the photo allowance for every paid profile.
const MaxPhotos = 5

var (
	// ErrPhotoLimitReached is returned before any upload is attempted once a profile is full.
	ErrPhotoLimitReached = errors.New("photo limit reached for current plan")
	// ErrAudioLimitReached is the audio counterpart of ErrPhotoLimitReached.
	ErrAudioLimitReached = errors.New("audio limit reached for current plan")
)

// Capabilities is the feature set unlocked for a (role, plan) pair.
type Capabilities struct {
	PhotoSlots         int
	AudioSlots         int
	Biography          bool
	MarketplaceListing bool
}

// CanUploadPhoto reports whether one more photo fits.
func (c Capabilities) CanUploadPhoto(existing int) bool {
	return c.PhotoSlots == Unlimited || existing < c.PhotoSlots
}

// CheckPhotoUpload returns ErrPhotoLimitReached when existing already fills every slot.
func (c Capabilities) CheckPhotoUpload(existing int) error {
	if !c.CanUploadPhoto(existing) {
		return ErrPhotoLimitReached
	}
	return nil
}

// CheckAudioUpload returns ErrAudioLimitReached when existing already fills every audio slot.
func (c Capabilities) CheckAudioUpload(existing int) error {
	if c.AudioSlots != Unlimited && existing >= c.AudioSlots {
		return ErrAudioLimitReached
	}
	return nil
}

// RemainingPhotos returns the free slots, or Unlimited.
func (c Capabilities) RemainingPhotos(existing int) int {
	if c.PhotoSlots == Unlimited {
		return Unlimited
	}
	if n := c.PhotoSlots - existing; n > 0 {
		return n
	}
	return 0
}

type capabilityKey struct {
	role domainauth.Role
	plan Plan
}

var unlimited = Capabilities{
	PhotoSlots:         Unlimited,
	AudioSlots:         Unlimited,
	Biography:          true,
	MarketplaceListing: true,
}

//nolint:gochecknoglobals // static read-only lookup table.
var capabilityTable = map[capabilityKey]Capabilities{
	{domainauth.RoleArtist, PlanFree}:       {PhotoSlots: 3, AudioSlots: 1},
	{domainauth.RolePhotographer, PlanFree}: {PhotoSlots: 3},
	{domainauth.RoleVenue, PlanFree}:        {PhotoSlots: 1},
	{domainauth.RoleStudio, PlanFree}:       {PhotoSlots: 1},
	{domainauth.RoleJournalist, PlanFree}:   {PhotoSlots: 0},

	{domainauth.RoleArtist, PlanPro}:       {PhotoSlots: MaxPhotos, AudioSlots: MaxPhotos, Biography: true, MarketplaceListing: true},
	{domainauth.RolePhotographer, PlanPro}: {PhotoSlots: MaxPhotos, Biography: true, MarketplaceListing: true},
	{domainauth.RoleVenue, PlanPro}:        {PhotoSlots: MaxPhotos, Biography: true, MarketplaceListing: true},
	{domainauth.RoleStudio, PlanPro}:       {PhotoSlots: MaxPhotos, Biography: true, MarketplaceListing: true},
	{domainauth.RoleJournalist, PlanPro}:   {PhotoSlots: MaxPhotos, Biography: true, MarketplaceListing: true},

	{domainauth.RoleAdmin, PlanFree}: unlimited,
	{domainauth.RoleAdmin, PlanPro}:  unlimited,
}

// CapabilitiesFor looks up the feature set for role on plan.
// Unknown pairs get the zero set, which permits nothing.
func CapabilitiesFor(role domainauth.Role, plan Plan) Capabilities {
	return capabilityTable[capabilityKey{role: role, plan: plan}]
}
