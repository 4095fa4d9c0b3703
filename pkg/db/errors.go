package db

import "errors"

// ErrNotFound is returned when a referenced event, clinic, request or member does not exist
var ErrNotFound = errors.New("not found")

// ErrClinicFull is returned when a clinic toggle would exceed max participants
var ErrClinicFull = errors.New("clinic is full")

// ErrDuplicateRequest is returned when a member already holds an active volunteer request
var ErrDuplicateRequest = errors.New("active volunteer request already exists")

// ErrSlotsFilled is returned when both volunteer positions are already taken
var ErrSlotsFilled = errors.New("both volunteer positions are filled")

// ErrAlreadyAssigned is returned when the member already occupies a slot on the event
var ErrAlreadyAssigned = errors.New("member already assigned to a volunteer slot")

// ErrNotPending is returned when a request is not in a state the operation accepts
var ErrNotPending = errors.New("request is not pending")
