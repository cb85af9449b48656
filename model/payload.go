package model

// CertificateTypeEIC tags EIC records in the database and notifications.
const CertificateTypeEIC = "eic"

// NotApplicable is the default for every empty schedule-of-test cell.
const NotApplicable = "N/A"

// CertificatePayload is the fixed-shape document sent to the render service.
// No field may be omitted from its JSON: the template has no null handling,
// so nothing here carries omitempty and every slice is non-nil.
type CertificatePayload struct {
	Metadata              PayloadMetadata       `json:"metadata"`
	ClientDetails         ClientDetails         `json:"client_details"`
	InstallationDetails   InstallationDetails   `json:"installation_details"`
	SupplyCharacteristics SupplyCharacteristics `json:"supply_characteristics"`
	ProtectiveDevice      ProtectiveDevice      `json:"protective_device"`
	DistributionBoards    []BoardSection        `json:"distribution_boards"`
	CableSizes            CableSizes            `json:"cable_sizes"`
	EarthingBonding       EarthingBonding       `json:"earthing_bonding"`
	InspectionItems       []InspectionRow       `json:"inspection_items"`
	ScheduleOfTests       []ScheduleRow         `json:"schedule_of_tests"`
	Observations          []ObservationRow      `json:"observations"`
	Declarations          Declarations          `json:"declarations"`
	DeparturesFromBS7671  string                `json:"departures_from_bs7671"`
	Comments              string                `json:"comments"`
}

type PayloadMetadata struct {
	ReportID          string `json:"report_id"`
	CertificateType   string `json:"certificate_type"`
	CertificateNumber string `json:"certificate_number"`
}

type ClientDetails struct {
	ClientName    string `json:"client_name"`
	ClientAddress string `json:"client_address"`
	ClientPhone   string `json:"client_phone"`
	ClientEmail   string `json:"client_email"`
}

type InstallationDetails struct {
	InstallationAddress string `json:"installation_address"`
	Postcode            string `json:"postcode"`
	InstallationDate    string `json:"installation_date"`
	PremisesType        string `json:"premises_type"`
	EstimatedAge        string `json:"estimated_age"`
	WorkType            string `json:"work_type"`
	ExtentOfWork        string `json:"extent_of_work"`
	NextInspectionDue   string `json:"next_inspection_due"`
}

type SupplyCharacteristics struct {
	EarthingArrangement        string `json:"earthing_arrangement"`
	SupplyPhases               string `json:"supply_phases"`
	SupplyVoltage              string `json:"supply_voltage"`
	SupplyFrequency            string `json:"supply_frequency"`
	ProspectiveFaultCurrent    string `json:"prospective_fault_current"`
	ExternalEarthLoopImpedance string `json:"external_earth_loop_impedance"`
	SupplyDeviceBsStandard     string `json:"supply_device_bs_standard"`
	SupplyDeviceType           string `json:"supply_device_type"`
	SupplyDeviceRating         string `json:"supply_device_rating"`
	PolarityConfirmed          bool   `json:"polarity_confirmed"`
}

type ProtectiveDevice struct {
	MainSwitchLocation      string `json:"main_switch_location"`
	MainSwitchBsStandard    string `json:"main_switch_bs_standard"`
	MainSwitchPoles         string `json:"main_switch_poles"`
	MainSwitchCurrentRating string `json:"main_switch_current_rating"`
	MainSwitchVoltageRating string `json:"main_switch_voltage_rating"`
	RcdType                 string `json:"rcd_type"`
	RcdRatedResidualCurrent string `json:"rcd_rated_residual_current"`
	RcdOperatingTime        string `json:"rcd_operating_time"`
}

type BoardSection struct {
	Reference    string            `json:"reference"`
	Location     string            `json:"location"`
	Manufacturer string            `json:"manufacturer"`
	SuppliedFrom string            `json:"supplied_from"`
	Phases       string            `json:"phases"`
	Zdb          string            `json:"zdb"`
	Ipf          string            `json:"ipf"`
	MainSwitch   BoardSwitchFields `json:"main_switch"`
	RCD          BoardRCDFields    `json:"rcd"`
	SPD          BoardSPDFields    `json:"spd"`
}

type BoardSwitchFields struct {
	BsStandard    string `json:"bs_standard"`
	Poles         string `json:"poles"`
	CurrentRating string `json:"current_rating"`
	VoltageRating string `json:"voltage_rating"`
}

type BoardRCDFields struct {
	Type                 string `json:"type"`
	RatedResidualCurrent string `json:"rated_residual_current"`
	OperatingTime        string `json:"operating_time"`
}

type BoardSPDFields struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type CableSizes struct {
	LiveConductorSize             string `json:"live_conductor_size"`
	CpcSize                       string `json:"cpc_size"`
	MainEarthingConductorSize     string `json:"main_earthing_conductor_size"`
	MainEarthingConductorMaterial string `json:"main_earthing_conductor_material"`
	MainBondingConductorSize      string `json:"main_bonding_conductor_size"`
	MainBondingConductorMaterial  string `json:"main_bonding_conductor_material"`
}

type EarthingBonding struct {
	MeansOfEarthing          string `json:"means_of_earthing"`
	EarthElectrodeType       string `json:"earth_electrode_type"`
	EarthElectrodeLocation   string `json:"earth_electrode_location"`
	EarthElectrodeResistance string `json:"earth_electrode_resistance"`
	BondingWater             bool   `json:"bonding_water"`
	BondingGas               bool   `json:"bonding_gas"`
	BondingOil               bool   `json:"bonding_oil"`
	BondingStructural        bool   `json:"bonding_structural"`
	BondingLightning         bool   `json:"bonding_lightning"`
	BondingOther             string `json:"bonding_other"`
}

type InspectionRow struct {
	ItemNumber  string `json:"item_number"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
	Notes       string `json:"notes"`
}

// ScheduleRow is one circuit of the schedule of test results. Text cells,
// including the RCD test button mark, default to "N/A".
type ScheduleRow struct {
	BoardID                  string `json:"board_id"`
	CircuitNumber            string `json:"circuit_number"`
	CircuitDesignation       string `json:"circuit_designation"`
	CircuitDescription       string `json:"circuit_description"`
	CircuitType              string `json:"circuit_type"`
	TypeOfWiring             string `json:"type_of_wiring"`
	ReferenceMethod          string `json:"reference_method"`
	PointsServed             string `json:"points_served"`
	LiveSize                 string `json:"live_size"`
	CpcSize                  string `json:"cpc_size"`
	CableSize                string `json:"cable_size"`
	BsStandard               string `json:"bs_standard"`
	ProtectiveDevice         string `json:"protective_device"`
	ProtectiveDeviceType     string `json:"protective_device_type"`
	ProtectiveDeviceRating   string `json:"protective_device_rating"`
	ProtectiveDeviceKaRating string `json:"protective_device_ka_rating"`
	ProtectiveDeviceLocation string `json:"protective_device_location"`
	MaxZs                    string `json:"max_zs"`
	RcdBsStandard            string `json:"rcd_bs_standard"`
	RcdType                  string `json:"rcd_type"`
	RcdRating                string `json:"rcd_rating"`
	RcdRatingA               string `json:"rcd_rating_a"`
	RingR1                   string `json:"ring_r1"`
	RingRn                   string `json:"ring_rn"`
	RingR2                   string `json:"ring_r2"`
	RingContinuityLive       string `json:"ring_continuity_live"`
	RingContinuityNeutral    string `json:"ring_continuity_neutral"`
	R1R2                     string `json:"r1_r2"`
	R2                       string `json:"r2"`
	InsulationTestVoltage    string `json:"insulation_test_voltage"`
	InsulationResistance     string `json:"insulation_resistance"`
	InsulationLiveNeutral    string `json:"insulation_live_neutral"`
	InsulationLiveEarth      string `json:"insulation_live_earth"`
	InsulationNeutralEarth   string `json:"insulation_neutral_earth"`
	Polarity                 string `json:"polarity"`
	Zs                       string `json:"zs"`
	RcdOneX                  string `json:"rcd_one_x"`
	AfddTest                 string `json:"afdd_test"`
	Pfc                      string `json:"pfc"`
	PfcLiveNeutral           string `json:"pfc_live_neutral"`
	PfcLiveEarth             string `json:"pfc_live_earth"`
	FunctionalTesting        string `json:"functional_testing"`
	Notes                    string `json:"notes"`
	IsRingFinal              bool   `json:"is_ring_final"`
	RcdTestButton            string `json:"rcd_test_button"`
}

type ObservationRow struct {
	ID             string   `json:"id"`
	Item           string   `json:"item"`
	Description    string   `json:"description"`
	DefectCode     string   `json:"defect_code"`
	Recommendation string   `json:"recommendation"`
	Rectified      bool     `json:"rectified"`
	PhotoEvidence  []string `json:"photo_evidence"`
	PhotoCount     int      `json:"photo_count"`
}

type Declarations struct {
	Designer    DeclarationSection `json:"designer"`
	Constructor DeclarationSection `json:"constructor"`
	Inspector   DeclarationSection `json:"inspector"`
}

type DeclarationSection struct {
	Name               string `json:"name"`
	Qualifications     string `json:"qualifications"`
	Company            string `json:"company"`
	Address            string `json:"address"`
	Position           string `json:"position"`
	RegistrationNumber string `json:"registration_number"`
	Date               string `json:"date"`
	Signature          string `json:"signature"`
	SameAsDesigner     bool   `json:"same_as_designer"`
}
