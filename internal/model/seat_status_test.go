package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestSeatInfoRemaining(t *testing.T) {
    info := SeatInfo{
        EconomyReserved: 8, EconomyBlocked: 5,
        BusinessReserved: 2, BusinessBlocked: 10,
    }
    rem := info.Remaining()
    assert.Equal(t, -3, rem.Economy, "more reserved than blocked yields a negative remaining")
    assert.Equal(t, 8, rem.Business)
    assert.Equal(t, 0, rem.First)
}

func TestSeatInfoShortage(t *testing.T) {
    info := SeatInfo{EconomyReserved: 3, EconomyBlocked: 3}
    assert.False(t, info.Shortage())

    info.FirstReserved = 1
    assert.True(t, info.Shortage(), "any class below zero flags the leg")
}

func TestSeatInfoSetBlockedClamps(t *testing.T) {
    var info SeatInfo
    info.SetBlocked(SeatCounts{Economy: -4, Business: 7, First: -1})
    assert.Equal(t, SeatCounts{Business: 7}, info.Blocked())
}

func TestSeatInfoHasActivity(t *testing.T) {
    var info SeatInfo
    assert.False(t, info.HasActivity())

    info.SetBlocked(SeatCounts{First: 2})
    assert.True(t, info.HasActivity())

    info = SeatInfo{BusinessReserved: 1}
    assert.True(t, info.HasActivity())
}

func TestSeatStatusInfo(t *testing.T) {
    ss := SeatStatus{
        Outbound: SeatInfo{EconomyReserved: 1},
        Inbound:  SeatInfo{EconomyReserved: 2},
    }
    assert.Equal(t, 1, ss.Info(DirectionOutbound).EconomyReserved)
    assert.Equal(t, 2, ss.Info(DirectionInbound).EconomyReserved)

    ss.Info(DirectionInbound).SetReserved(SeatCounts{Economy: 9})
    assert.Equal(t, 9, ss.Inbound.EconomyReserved, "Info returns a live pointer")
}

func TestSeatStatusShortageEitherDirection(t *testing.T) {
    ss := SeatStatus{
        Outbound: SeatInfo{EconomyReserved: 2, EconomyBlocked: 5},
        Inbound:  SeatInfo{EconomyReserved: 6, EconomyBlocked: 5},
    }
    assert.True(t, ss.Shortage())

    ss.Inbound.EconomyReserved = 5
    assert.False(t, ss.Shortage())
}

func TestDayOf(t *testing.T) {
    // 23:00 at UTC+9 is 14:00 UTC the same day; truncation happens in UTC.
    kst := time.FixedZone("KST", 9*60*60)
    got := DayOf(time.Date(2026, 6, 2, 23, 0, 0, 0, kst))
    assert.Equal(t, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), got)
}
