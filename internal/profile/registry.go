package profile

import (
	"fmt"
	"regexp"
	"strings"

	"docanalyzer/constants"
)

var byType = map[constants.DocumentType]*Profile{
	constants.Contract: contractProfile,
	constants.Resume:   resumeProfile,
	constants.Report:   reportProfile,
	constants.Generic:  genericProfile,
}

// Shared patterns. Email and phone show up in more than one profile.
var (
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)

	isoDatePattern   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	namedDatePattern = regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`)
	slashDatePattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
)

var contractProfile = &Profile{
	Type:         constants.Contract,
	Noun:         "contract",
	ExtractLabel: "contract document",
	Fields: []Field{
		{Name: "parties", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*part(?:y|ies)(?:\s+[ab12])?\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\bbetween\s+(.{2,80}?)\s+and\s+(.{2,80}?)\s*(?:[.,;\n(]|$)`),
		}},
		{Name: "contract_type", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:contract|agreement)\s+type\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\b(employment|service|services|consulting|lease|rental|licensing|purchase|non-disclosure|confidentiality)\s+(?:agreement|contract)\b`),
		}},
		{Name: "effective_date", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*effective\s+date\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\beffective\s+as\s+of\s+([^.;\n]{4,60})`),
		}},
		{Name: "expiration_date", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:expiration|expiry)\s+date\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\b(?:expires?|terminates?)\s+on\s+([^.;\n]{4,60})`),
		}},
		{Name: "payment_terms", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*payment\s+terms?\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\bshall\s+pay\s+([^.;\n]{4,120})`),
		}},
		{Name: "governing_law", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*governing\s+law\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\bgoverned\s+by\s+(?:the\s+laws?\s+of\s+)?([^.;\n]{2,80})`),
		}},
		{Name: "recitals", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*whereas[,:]?\s+(.+)$`),
		}},
	},
	ContextBudget:       4000,
	ExtractBudget:       4000,
	SystemPrompt:        "You are a helpful assistant that answers questions about contracts based on the provided contract information.",
	ExtractSystemPrompt: "You are an expert contract analyst. Extract key information from contracts and return structured data.",
	StructuredFields: []StructuredField{
		{Name: "parties", Description: "names of all parties involved in the contract"},
		{Name: "contract_type", Description: "type of contract (employment, service, lease, NDA, etc.)"},
		{Name: "effective_date", Description: "when the contract becomes effective"},
		{Name: "expiration_date", Description: "when the contract expires, if specified"},
		{Name: "key_terms", Description: "the most important terms and conditions"},
		{Name: "payment_terms", Description: "payment structure, amounts, and schedule"},
		{Name: "obligations", Description: "key obligations of each party"},
		{Name: "termination_conditions", Description: "how the contract can be terminated"},
		{Name: "governing_law", Description: "applicable law or jurisdiction"},
		{Name: "summary", Description: "brief overview of the contract"},
	},
	SummaryPrompt: "Provide a brief summary of this contract including the parties involved, contract type, key terms, and important dates.",
	Help: buildHelp("contracts", []string{
		"Who are the parties involved in this contract?",
		"What type of contract is this?",
		"What are the key terms and conditions?",
		"What are the payment terms?",
		"When does this contract expire?",
		"What are the termination conditions?",
		"What is the governing law?",
	}),
}

var resumeProfile = &Profile{
	Type:         constants.Resume,
	Noun:         "resume",
	ExtractLabel: "resume text",
	Fields: []Field{
		{Name: "name", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:full\s+)?name\s*[:\-]\s*(.+)$`),
		}},
		{Name: "email", Patterns: []*regexp.Regexp{emailPattern}},
		{Name: "phone", Patterns: []*regexp.Regexp{phonePattern}},
		{Name: "location", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:location|address|city)\s*[:\-]\s*(.+)$`),
		}},
		{Name: "skills", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:technical\s+|key\s+|core\s+)?skills\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\bskills\s*\n\s*([^\n]+)`),
		}},
		{Name: "experience", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:work\s+|professional\s+)?experience\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?i)\bexperience\s*\n\s*([^\n]+)`),
		}},
		{Name: "education", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*education\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`\b(Bachelor(?:\s+of\s+[A-Z][a-zA-Z ]{1,40})?|Master(?:\s+of\s+[A-Z][a-zA-Z ]{1,40})?|B\.?Tech|MBA|M\.B\.A\.|Ph\.?D\.?|B\.S\.|M\.S\.|B\.A\.|M\.A\.)`),
		}},
	},
	ContextBudget:       4000,
	ExtractBudget:       3000,
	SystemPrompt:        "You are a helpful assistant that answers questions about resumes and candidates based on the provided resume information.",
	ExtractSystemPrompt: "You are an expert resume parser. Extract key information from resumes and return structured data.",
	StructuredFields: []StructuredField{
		{Name: "name", Description: "candidate's full name"},
		{Name: "email", Description: "contact email address"},
		{Name: "phone", Description: "contact phone number"},
		{Name: "location", Description: "city or region the candidate is based in"},
		{Name: "skills", Description: "key technical and professional skills"},
		{Name: "experience", Description: "work experience with roles and companies"},
		{Name: "education", Description: "degrees, schools, and graduation dates"},
		{Name: "summary", Description: "brief professional profile of the candidate"},
	},
	SummaryPrompt: "Provide a brief summary of this resume including the candidate's name, current role, key skills, and experience level.",
	Help: buildHelp("resumes", []string{
		"What is the candidate's name?",
		"What skills does the candidate have?",
		"What is their work experience?",
		"What is their educational background?",
		"How can I contact the candidate?",
	}),
}

var reportProfile = &Profile{
	Type:         constants.Report,
	Noun:         "report",
	ExtractLabel: "report",
	Fields: []Field{
		{Name: "title", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:report\s+)?title\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`\A\s*([^\r\n]{4,120})`),
		}},
		{Name: "author", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:authors?|prepared\s+by|written\s+by)\s*[:\-]\s*(.+)$`),
		}},
		{Name: "date", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:date|published)\s*[:\-]\s*(.+)$`),
			isoDatePattern,
			namedDatePattern,
		}},
		{Name: "findings", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:key\s+)?findings?\s*[:\-]\s*(.+)$`),
			regexp.MustCompile(`(?im)^\s*conclusions?\s*[:\-]\s*(.+)$`),
		}},
		{Name: "abstract", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*(?:executive\s+summary|abstract)\s*[:\-]\s*(.+)$`),
		}},
	},
	ContextBudget:       4000,
	ExtractBudget:       3500,
	SystemPrompt:        "You are a helpful assistant that answers questions about reports based on the provided report information.",
	ExtractSystemPrompt: "You are an expert report analyst. Extract key information from reports and return structured data.",
	StructuredFields: []StructuredField{
		{Name: "title", Description: "title of the report"},
		{Name: "author", Description: "author or issuing organization"},
		{Name: "date", Description: "publication or reporting date"},
		{Name: "key_findings", Description: "the report's main findings"},
		{Name: "recommendations", Description: "recommended actions, if any"},
		{Name: "summary", Description: "brief overview of the report"},
	},
	SummaryPrompt: "Provide a brief summary of this report including its title, author, key findings, and recommendations.",
	Help: buildHelp("reports", []string{
		"What is this report about?",
		"Who wrote this report?",
		"What are the key findings?",
		"What are the recommendations?",
	}),
}

var genericProfile = &Profile{
	Type:         constants.Generic,
	Noun:         "document",
	ExtractLabel: "document",
	Fields: []Field{
		{Name: "email", Patterns: []*regexp.Regexp{emailPattern}},
		{Name: "phone", Patterns: []*regexp.Regexp{phonePattern}},
		{Name: "date", Patterns: []*regexp.Regexp{
			isoDatePattern,
			namedDatePattern,
			slashDatePattern,
		}},
		{Name: "amount", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d{1,2})?`),
			regexp.MustCompile(`(?i)\b(?:usd|eur|gbp|cad)\s?\d[\d,]*(?:\.\d{1,2})?\b`),
		}},
		{Name: "url", Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bhttps?://[^\s)>\]]+`),
		}},
	},
	ContextBudget:       4000,
	ExtractBudget:       3500,
	SystemPrompt:        "You are a helpful assistant that answers questions about documents based on the provided document information.",
	ExtractSystemPrompt: "You are an expert document analyst. Extract key information from documents and return structured data.",
	StructuredFields: []StructuredField{
		{Name: "document_type", Description: "what kind of document this appears to be"},
		{Name: "key_entities", Description: "people, organizations, and places mentioned"},
		{Name: "dates", Description: "important dates mentioned in the document"},
		{Name: "key_terms", Description: "important terms or topics"},
		{Name: "financial_info", Description: "amounts, prices, or other financial details"},
		{Name: "obligations", Description: "any obligations or commitments described"},
		{Name: "summary", Description: "brief overview of the document"},
	},
	SummaryPrompt: "Provide a brief summary of this document including its purpose, key entities, and important information.",
	Help: buildHelp("documents", []string{
		"What is this document about?",
		"What are the key points?",
		"Are there any important dates?",
		"Are there any financial details?",
	}),
}

func buildHelp(kind string, examples []string) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	b.WriteString("  help            show this message\n")
	b.WriteString("  summary         summarize the loaded document\n")
	b.WriteString("  fields          show snippets matched by the profile patterns\n")
	b.WriteString("  extract         pull structured data out of the document with the model\n")
	b.WriteString("  export <path>   write extracted fields to an XLSX workbook\n")
	b.WriteString("  quit            leave interactive mode\n")
	b.WriteString("\nAnything else is sent to the model as a question.\n")
	fmt.Fprintf(&b, "\nExample questions for %s:\n", kind)
	for _, q := range examples {
		fmt.Fprintf(&b, "  - %s\n", q)
	}
	return b.String()
}
