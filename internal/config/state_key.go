package config

import "fmt"

type StateKeyStruct struct{}

func NewStateKeyStruct() *StateKeyStruct {
	return &StateKeyStruct{}
}

// SubmittedKey returns the persisted-state key holding the last successful
// submission time for a browser fingerprint.
func (k *StateKeyStruct) SubmittedKey(fingerprint string) string {
	return fmt.Sprintf("questionnaire_submitted_%s", fingerprint)
}

// HintsCookie is the cookie the survey page stores its client hints in.
func (k *StateKeyStruct) HintsCookie() string {
	return "questionnaire_hints"
}

var StateKey = NewStateKeyStruct()
