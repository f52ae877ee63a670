package memory

import (
	"testing"

	"journeymap/application/ports"
	"journeymap/infrastructure/persistence/repotest"
)

func TestJourneyRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) ports.JourneyRepository {
		return NewJourneyRepository(nil)
	})
}
