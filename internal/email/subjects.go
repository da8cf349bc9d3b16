package email

const (
	subjectWelcome             = "Welcome to ByDayGigs"
	subjectNewLeadFmt          = "New lead for %s"
	subjectLeadConvertedFmt    = "Your lead for %s was converted"
	subjectBookingConfirmedFmt = "Booking confirmed: %s"
)
