package leave

import "errors"

var (
	ErrOnFullDayLeave   = errors.New("You are on approved full-day leave today")
	ErrOnMorningLeave   = errors.New("You are on approved morning half-day leave until 13:00")
	ErrOnAfternoonLeave = errors.New("You are on approved afternoon half-day leave from 13:00")
)
