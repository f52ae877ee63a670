package valueobjects

import "strings"

// ActorKind classifies a journey participant
type ActorKind string

const (
	ActorHuman  ActorKind = "human"
	ActorRobot  ActorKind = "robot"
	ActorSystem ActorKind = "system"
	ActorOther  ActorKind = "other"
)

// ParseActorKind normalizes a model-supplied kind. Unknown values map to ActorOther.
func ParseActorKind(s string) ActorKind {
	switch k := ActorKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ActorHuman, ActorRobot, ActorSystem:
		return k
	default:
		return ActorOther
	}
}
