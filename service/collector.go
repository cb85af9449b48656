package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
)

// Collector turns a draft into the render payload.
type Collector struct {
	photos *PhotoJoiner
}

func NewCollector(photos *PhotoJoiner) *Collector {
	return &Collector{photos: photos}
}

// Collect builds the payload and attaches observation photos. It never fails:
// a photo lookup problem leaves the observations without photos.
func (c *Collector) Collect(ctx context.Context, draft model.FormDraft, reportID string) model.CertificatePayload {
	payload := BuildPayload(draft, reportID)
	payload.Observations = c.photos.Join(ctx, reportID, payload.Observations)
	return payload
}

// BuildPayload maps a normalized draft onto the fixed export schema. It is
// total and deterministic: absent fields take their section's default and
// the same draft always yields the same payload. Inspection items are matched
// on their canonical item number only, so callers pass a normalized draft.
func BuildPayload(draft model.FormDraft, reportID string) model.CertificatePayload {
	return model.CertificatePayload{
		Metadata: model.PayloadMetadata{
			ReportID:          reportID,
			CertificateType:   "EIC",
			CertificateNumber: draft.CertificateNumber,
		},
		ClientDetails: model.ClientDetails{
			ClientName:    draft.ClientName,
			ClientAddress: draft.ClientAddress,
			ClientPhone:   draft.ClientPhone,
			ClientEmail:   draft.ClientEmail,
		},
		InstallationDetails: model.InstallationDetails{
			InstallationAddress: draft.InstallationAddress,
			Postcode:            draft.InstallationPostcode,
			InstallationDate:    draft.InstallationDate,
			PremisesType:        draft.PremisesType,
			EstimatedAge:        draft.EstimatedAge,
			WorkType:            draft.WorkType,
			ExtentOfWork:        draft.ExtentOfWork,
			NextInspectionDue:   draft.NextInspectionDue,
		},
		SupplyCharacteristics: model.SupplyCharacteristics{
			EarthingArrangement:        draft.EarthingArrangement,
			SupplyPhases:               draft.SupplyPhases,
			SupplyVoltage:              draft.SupplyVoltage,
			SupplyFrequency:            draft.SupplyFrequency,
			ProspectiveFaultCurrent:    draft.ProspectiveFaultCurrent,
			ExternalEarthLoopImpedance: draft.ExternalEarthLoopImpedance,
			SupplyDeviceBsStandard:     draft.SupplyDeviceBsStandard,
			SupplyDeviceType:           draft.SupplyDeviceType,
			SupplyDeviceRating:         draft.SupplyDeviceRating,
			PolarityConfirmed:          draft.SupplyPolarityConfirmed,
		},
		ProtectiveDevice: model.ProtectiveDevice{
			MainSwitchLocation:      draft.MainSwitchLocation,
			MainSwitchBsStandard:    draft.MainSwitchBsStandard,
			MainSwitchPoles:         draft.MainSwitchPoles,
			MainSwitchCurrentRating: draft.MainSwitchCurrentRating,
			MainSwitchVoltageRating: draft.MainSwitchVoltageRating,
			RcdType:                 draft.RcdType,
			RcdRatedResidualCurrent: draft.RcdRatedResidualCurrent,
			RcdOperatingTime:        draft.RcdOperatingTime,
		},
		DistributionBoards: boardSections(draft),
		CableSizes: model.CableSizes{
			LiveConductorSize:             draft.LiveConductorSize,
			CpcSize:                       draft.CpcSize,
			MainEarthingConductorSize:     conductorSize(draft.MainEarthingConductorSize, draft.MainEarthingConductorSizeCustom),
			MainEarthingConductorMaterial: draft.MainEarthingConductorMaterial,
			MainBondingConductorSize:      conductorSize(draft.MainBondingConductorSize, draft.MainBondingConductorSizeCustom),
			MainBondingConductorMaterial:  draft.MainBondingConductorMaterial,
		},
		EarthingBonding: model.EarthingBonding{
			MeansOfEarthing:          draft.MeansOfEarthing,
			EarthElectrodeType:       draft.EarthElectrodeType,
			EarthElectrodeLocation:   draft.EarthElectrodeLocation,
			EarthElectrodeResistance: draft.EarthElectrodeResistance,
			BondingWater:             draft.BondingWater,
			BondingGas:               draft.BondingGas,
			BondingOil:               draft.BondingOil,
			BondingStructural:        draft.BondingStructural,
			BondingLightning:         draft.BondingLightning,
			BondingOther:             draft.BondingOther,
		},
		InspectionItems: inspectionRows(draft.InspectionItems),
		ScheduleOfTests: scheduleRows(draft.ScheduleOfTests),
		Observations:    observationRows(draft.Observations),
		Declarations: model.Declarations{
			Designer:    declarationSection(draft.Designer),
			Constructor: declarationSection(draft.Constructor),
			Inspector:   declarationSection(draft.Inspector),
		},
		DeparturesFromBS7671: draft.DeparturesFromBS7671,
		Comments:             draft.Comments,
	}
}

// inspectionRows always yields the 14 schedule items in order. The first
// draft item carrying a given number wins.
func inspectionRows(items []model.InspectionItem) []model.InspectionRow {
	byNumber := make(map[string]model.InspectionItem, len(items))
	for _, item := range items {
		number := string(item.ItemNumber)
		if _, seen := byNumber[number]; !seen {
			byNumber[number] = item
		}
	}

	rows := make([]model.InspectionRow, 0, model.InspectionItemCount)
	for _, number := range model.InspectionItemNumbers() {
		item := byNumber[number]
		rows = append(rows, model.InspectionRow{
			ItemNumber:  number,
			Description: firstNonEmpty(item.Description, model.InspectionDescription(number)),
			Outcome:     model.CanonicalOutcome(item.Outcome),
			Notes:       item.Notes,
		})
	}
	return rows
}

// boardSections falls back per field: board value, then the draft's
// single-board field, then empty. Drafts from before boards were a list get
// one synthesised main board when they carry any single-board data.
func boardSections(draft model.FormDraft) []model.BoardSection {
	boards := draft.DistributionBoards
	if len(boards) == 0 {
		if !hasLegacyBoard(draft) {
			return []model.BoardSection{}
		}
		boards = []model.DistributionBoard{{}}
	}

	sections := make([]model.BoardSection, 0, len(boards))
	for i, b := range boards {
		sections = append(sections, model.BoardSection{
			Reference:    firstNonEmpty(b.Reference, fmt.Sprintf("DB%d", i+1)),
			Location:     firstNonEmpty(b.Location, draft.BoardLocation),
			Manufacturer: firstNonEmpty(b.Manufacturer, draft.BoardManufacturer),
			SuppliedFrom: b.SuppliedFrom,
			Phases:       firstNonEmpty(b.Phases, draft.SupplyPhases),
			Zdb:          firstNonEmpty(b.Zdb, draft.Zdb),
			Ipf:          firstNonEmpty(b.Ipf, draft.Ipf),
			MainSwitch: model.BoardSwitchFields{
				BsStandard:    firstNonEmpty(b.MainSwitch.BsStandard, draft.MainSwitchBsStandard),
				Poles:         firstNonEmpty(b.MainSwitch.Poles, draft.MainSwitchPoles),
				CurrentRating: firstNonEmpty(b.MainSwitch.CurrentRating, draft.MainSwitchCurrentRating),
				VoltageRating: firstNonEmpty(b.MainSwitch.VoltageRating, draft.MainSwitchVoltageRating),
			},
			RCD: model.BoardRCDFields{
				Type:                 firstNonEmpty(b.RCD.Type, draft.RcdType),
				RatedResidualCurrent: firstNonEmpty(b.RCD.RatedResidualCurrent, draft.RcdRatedResidualCurrent),
				OperatingTime:        firstNonEmpty(b.RCD.OperatingTime, draft.RcdOperatingTime),
			},
			SPD: model.BoardSPDFields{
				Type:   firstNonEmpty(b.SPD.Type, draft.SpdType),
				Status: firstNonEmpty(b.SPD.Status, draft.SpdStatus),
			},
		})
	}
	return sections
}

func hasLegacyBoard(d model.FormDraft) bool {
	for _, v := range []string{
		d.BoardLocation, d.BoardManufacturer, d.Zdb, d.Ipf,
		d.MainSwitchBsStandard, d.MainSwitchPoles, d.MainSwitchCurrentRating, d.MainSwitchVoltageRating,
		d.RcdType, d.RcdRatedResidualCurrent, d.RcdOperatingTime, d.SpdType, d.SpdStatus,
	} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func scheduleRows(entries []model.TestEntry) []model.ScheduleRow {
	rows := make([]model.ScheduleRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, model.ScheduleRow{
			BoardID:                  orNA(e.BoardID),
			CircuitNumber:            orNA(e.CircuitNumber),
			CircuitDesignation:       orNA(e.CircuitDesignation),
			CircuitDescription:       orNA(e.CircuitDescription),
			CircuitType:              orNA(e.CircuitType),
			TypeOfWiring:             orNA(e.TypeOfWiring),
			ReferenceMethod:          orNA(e.ReferenceMethod),
			PointsServed:             orNA(e.PointsServed),
			LiveSize:                 orNA(e.LiveSize),
			CpcSize:                  orNA(e.CpcSize),
			CableSize:                orNA(e.CableSize),
			BsStandard:               orNA(e.BsStandard),
			ProtectiveDevice:         orNA(e.ProtectiveDevice),
			ProtectiveDeviceType:     orNA(e.ProtectiveDeviceType),
			ProtectiveDeviceRating:   orNA(e.ProtectiveDeviceRating),
			ProtectiveDeviceKaRating: orNA(e.ProtectiveDeviceKaRating),
			ProtectiveDeviceLocation: orNA(e.ProtectiveDeviceLocation),
			MaxZs:                    orNA(e.MaxZs),
			RcdBsStandard:            orNA(e.RcdBsStandard),
			RcdType:                  orNA(e.RcdType),
			RcdRating:                orNA(e.RcdRating),
			RcdRatingA:               orNA(e.RcdRatingA),
			RingR1:                   orNA(e.RingR1),
			RingRn:                   orNA(e.RingRn),
			RingR2:                   orNA(e.RingR2),
			RingContinuityLive:       orNA(e.RingContinuityLive),
			RingContinuityNeutral:    orNA(e.RingContinuityNeutral),
			R1R2:                     orNA(e.R1R2),
			R2:                       orNA(e.R2),
			InsulationTestVoltage:    orNA(e.InsulationTestVoltage),
			InsulationResistance:     orNA(e.InsulationResistance),
			InsulationLiveNeutral:    orNA(e.InsulationLiveNeutral),
			InsulationLiveEarth:      orNA(e.InsulationLiveEarth),
			InsulationNeutralEarth:   orNA(e.InsulationNeutralEarth),
			Polarity:                 orNA(e.Polarity),
			Zs:                       orNA(e.Zs),
			RcdOneX:                  orNA(e.RcdOneX),
			AfddTest:                 orNA(e.AfddTest),
			Pfc:                      orNA(e.Pfc),
			PfcLiveNeutral:           orNA(e.PfcLiveNeutral),
			PfcLiveEarth:             orNA(e.PfcLiveEarth),
			FunctionalTesting:        orNA(e.FunctionalTesting),
			Notes:                    orNA(e.Notes),
			IsRingFinal:              e.IsRingFinal,
			RcdTestButton:            orNA(string(e.RcdTestButton)),
		})
	}
	return rows
}

func observationRows(observations []model.Observation) []model.ObservationRow {
	rows := make([]model.ObservationRow, 0, len(observations))
	for _, o := range observations {
		rows = append(rows, model.ObservationRow{
			ID:             o.ID,
			Item:           o.Item,
			Description:    o.Description,
			DefectCode:     o.Code(),
			Recommendation: o.Recommendation,
			Rectified:      o.Rectified,
			PhotoEvidence:  []string{},
		})
	}
	return rows
}

func declarationSection(d model.Declaration) model.DeclarationSection {
	return model.DeclarationSection{
		Name:               d.Name,
		Qualifications:     d.Qualifications,
		Company:            d.Company,
		Address:            d.Address,
		Position:           d.Position,
		RegistrationNumber: d.RegistrationNumber,
		Date:               d.Date,
		Signature:          d.Signature,
		SameAsDesigner:     d.SameAsDesigner,
	}
}

// conductorSize resolves the "custom" choice of a size picker.
func conductorSize(size, custom string) string {
	if strings.EqualFold(strings.TrimSpace(size), "custom") {
		return custom
	}
	return size
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.NotApplicable
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
