package directory

import "strings"

// Flatten converts a FHIR patient resource into the local demographics shape.
// Missing names fall back to "Unknown" and missing languages to "English",
// matching the upstream test server's sparse records.
func Flatten(res *Resource) Demographics {
	return Demographics{
		FHIRID:      res.ID,
		Name:        patientName(res),
		Gender:      res.Gender,
		BirthDate:   res.BirthDate,
		PhoneNumber: telecomValue(res, "phone"),
		Email:       telecomValue(res, "email"),
		Address:     addressText(res),
		Language:    preferredLanguage(res),
	}
}

func patientName(res *Resource) string {
	if len(res.Name) == 0 {
		return "Unknown"
	}
	name := res.Name[0]
	full := strings.TrimSpace(strings.Join(name.Given, " ") + " " + name.Family)
	if full == "" {
		if name.Text != "" {
			return name.Text
		}
		return "Unknown"
	}
	return full
}

func telecomValue(res *Resource, system string) string {
	for _, t := range res.Telecom {
		if t.System == system {
			return t.Value
		}
	}
	return ""
}

func addressText(res *Resource) string {
	if len(res.Address) == 0 {
		return ""
	}
	addr := res.Address[0]
	if addr.Text != "" {
		return addr.Text
	}
	parts := make([]string, 0, 4)
	if line := strings.Join(addr.Line, ", "); line != "" {
		parts = append(parts, line)
	}
	if addr.City != "" {
		parts = append(parts, addr.City)
	}
	tail := strings.TrimSpace(addr.State + " " + addr.PostalCode)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

func preferredLanguage(res *Resource) string {
	for _, comm := range res.Communication {
		if !comm.Preferred {
			continue
		}
		for _, coding := range comm.Language.Coding {
			if coding.Display != "" {
				return coding.Display
			}
		}
		if comm.Language.Text != "" {
			return comm.Language.Text
		}
	}
	return "English"
}
