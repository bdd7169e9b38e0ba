package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxCalendarDays caps one calendar query at roughly a year.
const maxCalendarDays = 366

// CalendarController tells a date picker which days have workouts.
type CalendarController struct {
	store CalendarStore
}

func NewCalendarController(store CalendarStore) *CalendarController {
	return &CalendarController{store: store}
}

// GetDates returns the distinct dates in [from, to] with at least one workout.
// GET /api/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
func (cc *CalendarController) GetDates(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	if to.Before(from) {
		respondValidationError(c, []FieldError{{Field: "to", Message: "must not be before from"}})
		return
	}
	if from.AddDays(maxCalendarDays).Before(to) {
		respondValidationError(c, []FieldError{{Field: "to", Message: "range must not exceed 366 days"}})
		return
	}

	dates, err := cc.store.ListDates(c.Request.Context(), userID, from, to)
	if err != nil {
		respondWorkoutError(c, err, "list calendar dates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":  from,
		"to":    to,
		"dates": dates,
	})
}
