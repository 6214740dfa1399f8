package store

// Program is the root of the rundown hierarchy. Logo and media effect
// fields drive the broadcast overlay views and receive defaults on create.
type Program struct {
	ID                   int    `json:"id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	LogoURL              string `json:"logoUrl"`
	LogoEffect           string `json:"logoEffect"`
	LogoEffectIntensity  int    `json:"logoEffectIntensity"`
	LogoPosition         string `json:"logoPosition"`
	LogoSize             int    `json:"logoSize"`
	MediaAppearEffect    string `json:"mediaAppearEffect"`
	MediaDisappearEffect string `json:"mediaDisappearEffect"`
}

// Episode belongs to exactly one Program.
type Episode struct {
	ID        int    `json:"id"`
	ProgramID int    `json:"programId"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
}

// Topic belongs to exactly one Episode. Both ancestor ids are denormalized
// onto the record so scoped lookups never traverse the hierarchy.
type Topic struct {
	ID        int    `json:"id"`
	ProgramID int    `json:"programId"`
	EpisodeID int    `json:"episodeId"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	Script    string `json:"script,omitempty"`
}

// MediaItem belongs to exactly one Topic. Order is a dense, zero-based
// sequence scoped to the topic, maintained by create and ReorderMedia.
type MediaItem struct {
	ID        int    `json:"id"`
	ProgramID int    `json:"programId"`
	EpisodeID int    `json:"episodeId"`
	TopicID   int    `json:"topicId"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Order     int    `json:"order"`
}

// ProgramPatch is a shallow merge applied by UpdateProgram. Nil fields are
// left untouched. Identity is never patchable.
type ProgramPatch struct {
	Title                *string `json:"title"`
	Description          *string `json:"description"`
	LogoURL              *string `json:"logoUrl"`
	LogoEffect           *string `json:"logoEffect"`
	LogoEffectIntensity  *int    `json:"logoEffectIntensity"`
	LogoPosition         *string `json:"logoPosition"`
	LogoSize             *int    `json:"logoSize"`
	MediaAppearEffect    *string `json:"mediaAppearEffect"`
	MediaDisappearEffect *string `json:"mediaDisappearEffect"`
}

// EpisodePatch is a shallow merge applied by UpdateEpisode.
type EpisodePatch struct {
	Number *int    `json:"number"`
	Title  *string `json:"title"`
}

// TopicPatch is a shallow merge applied by UpdateTopic.
type TopicPatch struct {
	Title    *string `json:"title"`
	Position *int    `json:"position"`
	Script   *string `json:"script"`
}

// MediaItemPatch is a shallow merge applied by UpdateMediaItem. Order is
// excluded; the dense sequence is owned by create and ReorderMedia.
type MediaItemPatch struct {
	Type    *string `json:"type"`
	Content *string `json:"content"`
}

// Effect defaults applied to programs created without explicit values.
const (
	DefaultLogoEffect          = "none"
	DefaultLogoEffectIntensity = 50
	DefaultLogoPosition        = "top-left"
	DefaultLogoSize            = 100
	DefaultMediaEffect         = "fade"
)

func applyProgramDefaults(p *Program) {
	if p.LogoEffect == "" {
		p.LogoEffect = DefaultLogoEffect
	}
	if p.LogoEffectIntensity == 0 {
		p.LogoEffectIntensity = DefaultLogoEffectIntensity
	}
	if p.LogoPosition == "" {
		p.LogoPosition = DefaultLogoPosition
	}
	if p.LogoSize == 0 {
		p.LogoSize = DefaultLogoSize
	}
	if p.MediaAppearEffect == "" {
		p.MediaAppearEffect = DefaultMediaEffect
	}
	if p.MediaDisappearEffect == "" {
		p.MediaDisappearEffect = DefaultMediaEffect
	}
}
