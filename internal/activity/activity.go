package activity

import "fmt"

// Placeholder names shared by the activity definition and its work items.
const (
	ParamInventorDoc    = "InventorDoc"
	ParamDocumentParams = "DocumentParams"
	ParamOutputZip      = "OutputZip"
)

type Verb string

const (
	VerbGet Verb = "get"
	VerbPut Verb = "put"
)

type AppBundle struct {
	ID          string `json:"id"`
	Engine      string `json:"engine"`
	Description string `json:"description,omitempty"`
}

type Parameter struct {
	Verb        Verb   `json:"verb"`
	Zip         bool   `json:"zip,omitempty"`
	LocalName   string `json:"localName,omitempty"`
	Description string `json:"description,omitempty"`
}

type Activity struct {
	ID          string               `json:"id"`
	Engine      string               `json:"engine"`
	CommandLine []string             `json:"commandLine"`
	AppBundles  []string             `json:"appbundles"`
	Parameters  map[string]Parameter `json:"parameters"`
	Description string               `json:"description,omitempty"`
}

func (c Config) AppBundle() AppBundle {
	return AppBundle{ID: c.BundleID, Engine: c.EngineID(), Description: c.Description}
}

// QualifiedBundleID references the labelled bundle version of owner.
func (c Config) QualifiedBundleID(owner string) string {
	return fmt.Sprintf("%s.%s+%s", owner, c.BundleID, c.Label)
}

// QualifiedActivityID is the activity reference a work item runs. The
// activity shares the bundle's id and label.
func (c Config) QualifiedActivityID(owner string) string {
	return c.QualifiedBundleID(owner)
}

func (c Config) CommandLine() []string {
	return []string{fmt.Sprintf(
		`$(engine.path)\InventorCoreConsole.exe /al $(appbundles[%s].path) $(args[%s].path) /i $(args[%s].path)`,
		c.BundleID, ParamDocumentParams, ParamInventorDoc,
	)}
}

// Activity builds the activity definition for owner's bundle.
func (c Config) Activity(owner string) Activity {
	return Activity{
		ID:          c.BundleID,
		Engine:      c.EngineID(),
		CommandLine: c.CommandLine(),
		AppBundles:  []string{c.QualifiedBundleID(owner)},
		Parameters: map[string]Parameter{
			ParamInventorDoc: {
				Verb:        VerbGet,
				Zip:         true,
				LocalName:   c.DocumentLocalName,
				Description: "Assembly Zip",
			},
			ParamDocumentParams: {
				Verb:        VerbGet,
				LocalName:   c.ParamsLocalName,
				Description: "Json file containing User Parameters",
			},
			ParamOutputZip: {
				Verb:        VerbPut,
				LocalName:   c.OutputLocalName,
				Description: "Resulting assembly",
			},
		},
		Description: c.Description,
	}
}
