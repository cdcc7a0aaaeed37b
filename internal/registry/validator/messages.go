package validator

// Validation messages. Validators concatenate every applicable message in
// one pass, so callers see all violations at once; tests assert on these
// constants rather than literal text.
const (
	MsgDocIDRequired        = "Document ID is required for staff registrations. "
	MsgDocIDInvalidChecksum = "Document ID verification checksum failed. "
	MsgDocIDExists          = "Document ID must be unique: provided value already exists. "

	MsgStateNotAllowed = "The home registration status does not allow this registration type. "

	MsgEffectiveNotAllowed = "Effective date and time is not allowed with this document type. "
	MsgEffectiveFuture     = "Effective date and time must be in the past for this document type. "
	MsgExpiryRequired      = "Expiry date and time is required with this document type. "
	MsgExpiryNotAllowed    = "Expiry date and time is not allowed with this document type. "
	MsgExpiryBeforeCurrent = "Expiry date and time must be after the effective date and time. "
	MsgExpiryElapsed       = "Expiry date and time must be in the future. "

	MsgNoticeRequired        = "A giving notice party is required with this document type. "
	MsgNoticeNameRequired    = "The giving notice party must have a business or person name. "
	MsgNoticeAddressRequired = "The giving notice party must have a complete address. "

	MsgNoteDocTypeInvalid = "The document type is not a unit note type. "

	MsgUpdateDocIDRequired = "An update document ID identifying the note to cancel is required. "
	MsgUpdateDocNotFound   = "No note was found on the registration for the update document ID. "
	MsgNoteNotActive       = "The note identified by the update document ID is not active. "
	MsgStateCancelMismatch = "The document type cannot cancel the type of the identified note. "

	MsgDeleteGroupNotFound = "A deleted owner group ID does not match any active owner group. "
	MsgAddGroupDuplicate   = "An added owner group ID duplicates a retained owner group. "
	MsgGroupOwnersRequired = "Each added owner group must contain at least one owner. "
	MsgGroupsEmpty         = "The transfer would leave the home with no active owner groups. "
	MsgGroupInterestTotal  = "The owner group tenancy interests must total exactly 1. "
	MsgGroupInterestValues = "COMMON tenancy owner groups must include interest values. "

	MsgExemptExists           = "The home already has an active exemption note. "
	MsgPermitRequiresStaff    = "Only staff may issue a permit on an exempt home. "
	MsgPermitLocationRequired = "A new location is required to issue or amend a transport permit. "
	MsgPermitNoActive         = "No active transport permit was found to extend or amend. "
	MsgGroupNotAllowed        = "The account type is not authorized for this registration type. "
)
