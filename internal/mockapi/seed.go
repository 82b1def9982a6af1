package mockapi

import (
	"encoding/json"
	"fmt"
)

// DefaultChatPath is where the mock serves chat. It is deliberately not the
// first client candidate, so endpoint fallback is exercised locally.
const DefaultChatPath = "/api/v1/chats"

// DefaultCollections returns every portal collection with a small seed set.
// /api/v1/service answers /many with the legacy plain envelope.
func DefaultCollections() []CollectionSpec {
	return []CollectionSpec{
		{
			Path: "/api/v1/specialization",
			Seed: mustRecords(`[
				{"_id":"spec-cardio","name":"Cardiology","description":"Heart and vessels","isActive":true},
				{"_id":"spec-derm","name":"Dermatology","description":"Skin care","isActive":true},
				{"_id":"spec-peds","name":"Pediatrics","description":"Children's health","isActive":false}
			]`),
		},
		{
			Path:    "/api/v1/doctor",
			Refs:    map[string]string{"specialization": "/api/v1/specialization"},
			Lookups: map[string]string{"specialization": "specialization"},
			Seed: mustRecords(`[
				{"_id":"doc-1","fullName":"Dr. Amelia Hart","email":"hart@medcare.test","specialization":"spec-cardio","experience":12,"consultationFee":80,"isActive":true},
				{"_id":"doc-2","fullName":"Dr. Ben Osei","email":"osei@medcare.test","specialization":"spec-derm","experience":7,"consultationFee":60,"isActive":true},
				{"_id":"doc-3","fullName":"Dr. Chen Li","email":"li@medcare.test","specialization":"spec-cardio","experience":3,"consultationFee":45,"isActive":false}
			]`),
		},
		{
			Path: "/api/v1/package",
			Seed: mustRecords(`[
				{"_id":"pkg-basic","title":"Basic Checkup","price":120,"services":["svc-blood","svc-ecg"],"isActive":true},
				{"_id":"pkg-heart","title":"Heart Health Checkup","price":260,"discountPrice":220,"services":["svc-ecg","svc-echo"],"isActive":true},
				{"_id":"pkg-skin","title":"Skin Screening","price":90,"services":["svc-derm"],"isActive":false}
			]`),
		},
		{
			Path:       "/api/v1/service",
			LegacyMany: true,
			Lookups:    map[string]string{"package": "package"},
			Seed: mustRecords(`[
				{"_id":"svc-blood","name":"Blood panel","price":25,"duration":15,"package":"pkg-basic","isActive":true},
				{"_id":"svc-ecg","name":"ECG","price":40,"duration":20,"package":"pkg-heart","isActive":true},
				{"_id":"svc-echo","name":"Echocardiogram","price":150,"duration":45,"package":"pkg-heart","isActive":true},
				{"_id":"svc-derm","name":"Dermatoscopy","price":70,"duration":30,"package":"pkg-skin","isActive":false}
			]`),
		},
		{
			Path: "/api/v1/user",
			Seed: mustRecords(`[
				{"_id":"user-1","fullName":"Grace Patient","email":"grace@medcare.test","role":"patient","isActive":true},
				{"_id":"user-2","fullName":"Henry Patient","email":"henry@medcare.test","role":"patient","isActive":true},
				{"_id":"user-admin","fullName":"Ivy Admin","email":"ivy@medcare.test","role":"admin","isActive":true}
			]`),
		},
		{
			Path:    "/api/v1/schedule",
			Refs:    map[string]string{"doctor": "/api/v1/doctor", "patient": "/api/v1/user"},
			Lookups: map[string]string{"doctor": "doctor", "patient": "patient"},
			Seed: mustRecords(`[
				{"_id":"sch-1","doctor":"doc-1","patient":"user-1","date":"2026-11-02T09:00:00Z","startTime":"09:00","endTime":"09:30","status":"confirmed"},
				{"_id":"sch-2","doctor":"doc-2","patient":"user-2","date":"2026-11-03T14:00:00Z","startTime":"14:00","endTime":"14:20","status":"pending"}
			]`),
		},
		{
			Path:    "/api/v1/prescription",
			Refs:    map[string]string{"doctor": "/api/v1/doctor", "patient": "/api/v1/user"},
			Lookups: map[string]string{"doctor": "doctor"},
			Seed: mustRecords(`[
				{"_id":"rx-1","doctor":"doc-1","patient":"user-1","schedule":"sch-1","diagnosis":"Mild hypertension","medications":[{"name":"Amlodipine","dosage":"5mg","frequency":"daily"}]}
			]`),
		},
		{
			Path:    "/api/v1/payment",
			Refs:    map[string]string{"user": "/api/v1/user"},
			Lookups: map[string]string{"user": "user"},
			Seed: mustRecords(`[
				{"_id":"pay-1","user":"user-1","package":"pkg-basic","amount":120,"currency":"USD","method":"card","status":"paid"},
				{"_id":"pay-2","user":"user-2","package":"pkg-heart","amount":220,"currency":"USD","method":"card","status":"pending"}
			]`),
		},
		{
			Path:        "/api/v1/blog",
			ToggleField: "status",
			Refs:        map[string]string{"author": "/api/v1/doctor"},
			Unique:      map[string]string{"slug": "slug"},
			Seed: mustRecords(`[
				{"_id":"blog-1","title":"Sleep and your heart","slug":"sleep-and-your-heart","author":"doc-1","status":"published","createdAt":"2026-09-01T08:00:00Z"},
				{"_id":"blog-2","title":"Sunscreen myths","slug":"sunscreen-myths","author":"doc-2","status":"published","createdAt":"2026-10-01T08:00:00Z"},
				{"_id":"blog-3","title":"Draft: flu season","slug":"flu-season","author":"doc-1","status":"draft","createdAt":"2026-10-10T08:00:00Z"}
			]`),
		},
	}
}

func mustRecords(raw string) []Record {
	var recs []Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		panic(fmt.Sprintf("mockapi: invalid seed: %v", err))
	}
	return recs
}
