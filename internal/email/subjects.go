package email

const (
	subjectAssignmentOffer = "Nieuwe klusaanvraag in uw regio"
)
