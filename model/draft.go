package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormDraft is the in-progress EIC as edited by the user. Every field is
// optional until export; an empty string means "not filled in".
type FormDraft struct {
	// Client details
	ClientName    string `json:"clientName,omitempty"`
	ClientAddress string `json:"clientAddress,omitempty"`
	ClientPhone   string `json:"clientPhone,omitempty"`
	ClientEmail   string `json:"clientEmail,omitempty"`

	// Installation details
	CertificateNumber    string `json:"certificateNumber,omitempty"`
	InstallationAddress  string `json:"installationAddress,omitempty"`
	InstallationPostcode string `json:"installationPostcode,omitempty"`
	InstallationDate     string `json:"installationDate,omitempty"`
	PremisesType         string `json:"premisesType,omitempty"`
	EstimatedAge         string `json:"estimatedAge,omitempty"`
	WorkType             string `json:"workType,omitempty"`
	ExtentOfWork         string `json:"extentOfWork,omitempty"`
	NextInspectionDue    string `json:"nextInspectionDue,omitempty"`

	// Supply characteristics
	EarthingArrangement        string `json:"earthingArrangement,omitempty"`
	SupplyPhases               string `json:"supplyPhases,omitempty"`
	SupplyVoltage              string `json:"supplyVoltage,omitempty"`
	SupplyFrequency            string `json:"supplyFrequency,omitempty"`
	ProspectiveFaultCurrent    string `json:"prospectiveFaultCurrent,omitempty"`
	ExternalEarthLoopImpedance string `json:"externalEarthLoopImpedance,omitempty"`
	SupplyDeviceBsStandard     string `json:"supplyDeviceBsStandard,omitempty"`
	SupplyDeviceType           string `json:"supplyDeviceType,omitempty"`
	SupplyDeviceRating         string `json:"supplyDeviceRating,omitempty"`
	SupplyPolarityConfirmed    bool   `json:"supplyPolarityConfirmed,omitempty"`

	// Single-board fields from certificates written before boards were a list.
	// They also act as fallbacks for every entry of DistributionBoards.
	MainSwitchLocation      string `json:"mainSwitchLocation,omitempty"`
	MainSwitchBsStandard    string `json:"mainSwitchBsStandard,omitempty"`
	MainSwitchPoles         string `json:"mainSwitchPoles,omitempty"`
	MainSwitchCurrentRating string `json:"mainSwitchCurrentRating,omitempty"`
	MainSwitchVoltageRating string `json:"mainSwitchVoltageRating,omitempty"`
	RcdType                 string `json:"rcdType,omitempty"`
	RcdRatedResidualCurrent string `json:"rcdRatedResidualCurrent,omitempty"`
	RcdOperatingTime        string `json:"rcdOperatingTime,omitempty"`
	SpdType                 string `json:"spdType,omitempty"`
	SpdStatus               string `json:"spdStatus,omitempty"`
	BoardLocation           string `json:"boardLocation,omitempty"`
	BoardManufacturer       string `json:"boardManufacturer,omitempty"`
	Zdb                     string `json:"zdb,omitempty"`
	Ipf                     string `json:"ipf,omitempty"`

	DistributionBoards []DistributionBoard `json:"distributionBoards,omitempty"`

	// Cable sizes. "custom" in a size field selects the matching *Custom value.
	LiveConductorSize               string `json:"liveConductorSize,omitempty"`
	CpcSize                         string `json:"cpcSize,omitempty"`
	MainEarthingConductorSize       string `json:"mainEarthingConductorSize,omitempty"`
	MainEarthingConductorSizeCustom string `json:"mainEarthingConductorSizeCustom,omitempty"`
	MainEarthingConductorMaterial   string `json:"mainEarthingConductorMaterial,omitempty"`
	MainBondingConductorSize        string `json:"mainBondingConductorSize,omitempty"`
	MainBondingConductorSizeCustom  string `json:"mainBondingConductorSizeCustom,omitempty"`
	MainBondingConductorMaterial    string `json:"mainBondingConductorMaterial,omitempty"`

	// Earthing and bonding
	MeansOfEarthing          string `json:"meansOfEarthing,omitempty"`
	EarthElectrodeType       string `json:"earthElectrodeType,omitempty"`
	EarthElectrodeLocation   string `json:"earthElectrodeLocation,omitempty"`
	EarthElectrodeResistance string `json:"earthElectrodeResistance,omitempty"`
	BondingWater             bool   `json:"bondingWater,omitempty"`
	BondingGas               bool   `json:"bondingGas,omitempty"`
	BondingOil               bool   `json:"bondingOil,omitempty"`
	BondingStructural        bool   `json:"bondingStructural,omitempty"`
	BondingLightning         bool   `json:"bondingLightning,omitempty"`
	BondingOther             string `json:"bondingOther,omitempty"`

	InspectionItems []InspectionItem `json:"inspectionItems,omitempty"`
	ScheduleOfTests []TestEntry      `json:"scheduleOfTests,omitempty"`
	Observations    []Observation    `json:"defectObservations,omitempty"`

	Designer    Declaration `json:"designer"`
	Constructor Declaration `json:"constructor"`
	Inspector   Declaration `json:"inspector"`

	DeparturesFromBS7671 string `json:"departuresFromBS7671,omitempty"`
	Comments             string `json:"comments,omitempty"`

	PartPNotification bool `json:"partPNotification,omitempty"`
}

// DistributionBoard is one board of the installation. Empty sub-fields fall
// back to the draft's single-board fields at export time.
type DistributionBoard struct {
	ID           string      `json:"id,omitempty"`
	Reference    string      `json:"reference,omitempty"`
	Location     string      `json:"location,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	SuppliedFrom string      `json:"suppliedFrom,omitempty"`
	Phases       string      `json:"phases,omitempty"`
	Zdb          string      `json:"zdb,omitempty"`
	Ipf          string      `json:"ipf,omitempty"`
	MainSwitch   BoardSwitch `json:"mainSwitch"`
	RCD          BoardRCD    `json:"rcd"`
	SPD          BoardSPD    `json:"spd"`
}

type BoardSwitch struct {
	BsStandard    string `json:"bsStandard,omitempty"`
	Poles         string `json:"poles,omitempty"`
	CurrentRating string `json:"currentRating,omitempty"`
	VoltageRating string `json:"voltageRating,omitempty"`
}

type BoardRCD struct {
	Type                 string `json:"type,omitempty"`
	RatedResidualCurrent string `json:"ratedResidualCurrent,omitempty"`
	OperatingTime        string `json:"operatingTime,omitempty"`
}

type BoardSPD struct {
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// TestEntry is one circuit row of the schedule of test results.
type TestEntry struct {
	ID                       string `json:"id,omitempty"`
	BoardID                  string `json:"boardId,omitempty"`
	CircuitNumber            string `json:"circuitNumber,omitempty"`
	CircuitDesignation       string `json:"circuitDesignation,omitempty"`
	CircuitDescription       string `json:"circuitDescription,omitempty"`
	CircuitType              string `json:"circuitType,omitempty"`
	TypeOfWiring             string `json:"typeOfWiring,omitempty"`
	ReferenceMethod          string `json:"referenceMethod,omitempty"`
	PointsServed             string `json:"pointsServed,omitempty"`
	LiveSize                 string `json:"liveSize,omitempty"`
	CpcSize                  string `json:"cpcSize,omitempty"`
	CableSize                string `json:"cableSize,omitempty"`
	BsStandard               string `json:"bsStandard,omitempty"`
	ProtectiveDevice         string `json:"protectiveDevice,omitempty"`
	ProtectiveDeviceType     string `json:"protectiveDeviceType,omitempty"`
	ProtectiveDeviceRating   string `json:"protectiveDeviceRating,omitempty"`
	ProtectiveDeviceKaRating string `json:"protectiveDeviceKaRating,omitempty"`
	ProtectiveDeviceLocation string `json:"protectiveDeviceLocation,omitempty"`
	MaxZs                    string `json:"maxZs,omitempty"`
	RcdBsStandard            string `json:"rcdBsStandard,omitempty"`
	RcdType                  string `json:"rcdType,omitempty"`
	RcdRating                string `json:"rcdRating,omitempty"`
	RcdRatingA               string `json:"rcdRatingA,omitempty"`
	RingR1                   string `json:"ringR1,omitempty"`
	RingRn                   string `json:"ringRn,omitempty"`
	RingR2                   string `json:"ringR2,omitempty"`
	RingContinuityLive       string `json:"ringContinuityLive,omitempty"`
	RingContinuityNeutral    string `json:"ringContinuityNeutral,omitempty"`
	R1R2                     string `json:"r1r2,omitempty"`
	R2                       string `json:"r2,omitempty"`
	InsulationTestVoltage    string `json:"insulationTestVoltage,omitempty"`
	InsulationResistance     string `json:"insulationResistance,omitempty"`
	InsulationLiveNeutral    string `json:"insulationLiveNeutral,omitempty"`
	InsulationLiveEarth      string `json:"insulationLiveEarth,omitempty"`
	InsulationNeutralEarth   string `json:"insulationNeutralEarth,omitempty"`
	Polarity                 string `json:"polarity,omitempty"`
	Zs                       string `json:"zs,omitempty"`
	RcdOneX                  string `json:"rcdOneX,omitempty"`
	AfddTest                 string `json:"afddTest,omitempty"`
	Pfc                      string `json:"pfc,omitempty"`
	PfcLiveNeutral           string `json:"pfcLiveNeutral,omitempty"`
	PfcLiveEarth             string `json:"pfcLiveEarth,omitempty"`
	FunctionalTesting        string `json:"functionalTesting,omitempty"`
	Notes                    string `json:"notes,omitempty"`
	IsRingFinal              bool   `json:"isRingFinal,omitempty"`

	RcdTestButton TestMark `json:"rcdTestButton,omitempty"`
}

// Observation is a defect or finding recorded against the installation.
// Drafts saved by older editors carry the defect code under "code".
type Observation struct {
	ID             string `json:"id,omitempty"`
	Item           string `json:"item,omitempty"`
	Description    string `json:"description,omitempty"`
	DefectCode     string `json:"defectCode,omitempty"`
	LegacyCode     string `json:"code,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Rectified      bool   `json:"rectified,omitempty"`
}

// Code returns the defect code under whichever name it was stored.
func (o Observation) Code() string {
	if o.DefectCode != "" {
		return o.DefectCode
	}
	return o.LegacyCode
}

// Declaration is one of the designer, constructor or inspector sign-offs.
type Declaration struct {
	Name               string `json:"name,omitempty"`
	Qualifications     string `json:"qualifications,omitempty"`
	Company            string `json:"company,omitempty"`
	Address            string `json:"address,omitempty"`
	Position           string `json:"position,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	Date               string `json:"date,omitempty"`
	Signature          string `json:"signature,omitempty"`
	SameAsDesigner     bool   `json:"sameAsDesigner,omitempty"`
}

// Signed reports whether the declaration has both a name and a signature.
func (d Declaration) Signed() bool {
	return strings.TrimSpace(d.Name) != "" && strings.TrimSpace(d.Signature) != ""
}

// Section names reported by MissingSections.
const (
	SectionInstallation = "Installation Details"
	SectionDesigner     = "Designer Declaration"
	SectionConstructor  = "Constructor Declaration"
	SectionInspector    = "Inspection & Testing Declaration"
)

// MissingSections lists the sections that must be completed before a
// certificate can be generated, in form order.
func (d *FormDraft) MissingSections() []string {
	var missing []string
	if blank(d.ClientName) || blank(d.InstallationAddress) || blank(d.InstallationDate) {
		missing = append(missing, SectionInstallation)
	}
	if !d.Designer.Signed() {
		missing = append(missing, SectionDesigner)
	}
	constructor := d.Constructor
	if constructor.SameAsDesigner {
		constructor = copyDesigner(d.Designer, constructor)
	}
	if !constructor.Signed() {
		missing = append(missing, SectionConstructor)
	}
	if !d.Inspector.Signed() {
		missing = append(missing, SectionInspector)
	}
	return missing
}

// CanGenerateCertificate reports whether every required section is complete.
func (d *FormDraft) CanGenerateCertificate() bool {
	return len(d.MissingSections()) == 0
}

// Normalized returns a copy of the draft with inspection item identities
// migrated to the canonical item number, the inspection template seeded when
// no items exist, and the "same as designer" copy applied. The receiver is
// not modified.
func (d FormDraft) Normalized() FormDraft {
	out := d
	out.InspectionItems = normalizeInspectionItems(d.InspectionItems)
	if len(out.InspectionItems) == 0 {
		out.InspectionItems = InspectionTemplate()
	}
	out.DistributionBoards = append([]DistributionBoard(nil), d.DistributionBoards...)
	out.ScheduleOfTests = append([]TestEntry(nil), d.ScheduleOfTests...)
	out.Observations = append([]Observation(nil), d.Observations...)
	if out.Constructor.SameAsDesigner {
		out.Constructor = copyDesigner(out.Designer, out.Constructor)
	}
	return out
}

// copyDesigner overwrites the constructor's identity fields with the designer's.
func copyDesigner(designer, constructor Declaration) Declaration {
	constructor.Name = designer.Name
	constructor.Qualifications = designer.Qualifications
	constructor.Company = designer.Company
	constructor.Date = designer.Date
	constructor.Signature = designer.Signature
	return constructor
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FlexString accepts a JSON string or number and always re-encodes as a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// TestMark is a tick-box test result. The editor stores "", "✓" or "N/A";
// drafts written before it became a text cell carry a JSON boolean.
type TestMark string

// Tick-box marks.
const (
	MarkPass TestMark = "✓"
	MarkFail TestMark = "✗"
)

func (m *TestMark) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*m = ""
	case bytes.Equal(data, []byte("true")):
		*m = MarkPass
	case bytes.Equal(data, []byte("false")):
		*m = MarkFail
	default:
		var f FlexString
		if err := f.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("test mark: %w", err)
		}
		*m = TestMark(strings.TrimSpace(string(f)))
	}
	return nil
}
