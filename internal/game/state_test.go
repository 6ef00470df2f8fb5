package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rosterState() *State {
	return &State{
		Players: []Player{
			{UserID: "u1", Name: "One"},
			{UserID: "u2", Name: "Two"},
			{UserID: "u3", Name: "Three"},
		},
		Blocked: map[string]bool{},
	}
}

func TestBlockAllExcept(t *testing.T) {
	st := rosterState()
	st.BlockAllExcept("u2")

	assert.True(t, st.Blocked["u1"])
	assert.False(t, st.Blocked["u2"])
	assert.True(t, st.Blocked["u3"])
}

func TestBlockOnly(t *testing.T) {
	st := rosterState()
	st.BlockOnly("u2")

	assert.False(t, st.Blocked["u1"])
	assert.True(t, st.Blocked["u2"])
	assert.False(t, st.Blocked["u3"])
}

func TestEligiblePlayers(t *testing.T) {
	st := rosterState()
	assert.Len(t, st.EligiblePlayers(), 3)

	st.BlockOnly("u1")
	eligible := st.EligiblePlayers()
	assert.Len(t, eligible, 2)
	assert.Equal(t, "u2", eligible[0].UserID)

	st.BlockAllExcept("u3")
	st.Blocked["u3"] = true
	assert.Empty(t, st.EligiblePlayers())
}

func TestPlayerName(t *testing.T) {
	st := rosterState()
	assert.Equal(t, "Two", st.PlayerName("u2"))
	assert.Equal(t, "unknown", st.PlayerName("ghost"))
}
