package report

// Entry is one variable of the report, in the order the rows are printed.
type Entry struct {
	Model    string
	Object   string
	Variable string
	Scheme   Scheme
}

type group struct {
	model, object string
	vars          []string
}

var groups = []group{
	{"electrons", "Electron", []string{
		"GenElectron_pt", "GenPromptPhoton_pt", "Jet_pt", "Jet_mass",
		"GenElectron_ClosestGenJet_DeltaR", "GenPromptPhoton_ClosestGenJet_DeltaR",
		"Jet_GenElectronDr", "Jet_GenPromptPhotonDr",
		"GenElectron_ClosestGenJet_pt", "GenElectron_ClosestGenJet_mass",
		"GenPromptPhoton_ClosestGenJet_pt", "GenPromptPhoton_ClosestGenJet_mass",
	}},
	{"jets", "Jet", []string{
		"GenJet_pt", "GenJet_mass", "GenJet_closestGVTau_pt", "GenJet_Pileup_nPU",
		"GenJet_SV_mass", "FakeJet_pt",
	}},
	{"fatjets", "FatJet", []string{
		"GenJetAK8_pt", "GenJetAK8_mass",
		"GenJetAK8_SubGenJetAK8_pt1", "GenJetAK8_SubGenJetAK8_pt2",
		"GenJetAK8_SubGenJetAK8_mass1", "GenJetAK8_SubGenJetAK8_mass2",
	}},
	{"muons", "Muon", []string{
		"Muon_pt", "Muon_mass", "Muon_genMuonPt", "Muon_FSRPt",
		"GenJet_pt", "GenJet_mass", "GenJet_closestMuon_dr", "GenJet_closestMuon_pt",
		"GenJet_closestGVTau_pt", "GenJet_Pileup_nPU", "GenJet_SV_mass",
	}},
	{"met", "MET", []string{
		"GenMET_pt", "Pileup_nPU", "GenHT", "JetHT", "Recoil_pt", "Ref_pt",
	}},
	{"muonjets", "MuonJet", []string{
		"GenMuon_pt", "GenMuon_ClosestGenJet_DeltaR", "GenMuon_ClosestGenJet_pt",
		"GenMuon_ClosestGenJet_mass", "GenMuon_Pileup_nPU",
		"Jet_pt", "Jet_mass", "Jet_GenMuonDr", "Duplicate_pt",
	}},
	{"egamma_jets", "EGammaJet", []string{
		"GenElectron_pt", "GenPromptPhoton_pt", "Jet_pt", "Jet_mass",
		"GenElectron_ClosestGenJet_DeltaR", "GenPromptPhoton_ClosestGenJet_DeltaR",
		"Jet_GenElectronDr", "Jet_GenPromptPhotonDr",
		"GenElectron_ClosestGenJet_pt", "GenElectron_ClosestGenJet_mass",
		"GenPromptPhoton_ClosestGenJet_pt", "GenPromptPhoton_ClosestGenJet_mass",
	}},
	{"secondary_vertices", "SV", []string{
		"TrackGenJetAK4_pt", "PileUpSV_nPU",
	}},
	{"subjets", "SubJet", []string{
		"GenJet_pt", "SubGenJetAK8_pt", "SubGenJetAK8_mass",
		"SubGenJetAK8_ReconstructedFatJet_pt", "SubGenJetAK8_ReconstructedFatJet_mass",
	}},
	{"taus", "Tau", []string{
		"MatchedJet_pt", "MatchedJet_mass", "MatchedJet_SV_mass",
		"MatchedJet_ClosestGenVisTau_DeltaR", "MatchedJet_ClosestGenVisTau_mass",
		"MatchedJet_ClosestGenVisTau_pt",
		"UnmatchedJet_pt", "UnmatchedJet_mass", "UnmatchedJet_SV_mass",
	}},
}

var deltaRVars = map[string]bool{
	"GenElectron_ClosestGenJet_DeltaR":     true,
	"GenPromptPhoton_ClosestGenJet_DeltaR": true,
	"Jet_GenElectronDr":                    true,
	"Jet_GenPromptPhotonDr":                true,
	"GenJet_closestMuon_dr":                true,
	"GenMuon_ClosestGenJet_DeltaR":         true,
	"Jet_GenMuonDr":                        true,
	"MatchedJet_ClosestGenVisTau_DeltaR":   true,
}

var pileupVars = map[string]bool{
	"GenJet_Pileup_nPU":  true,
	"Pileup_nPU":         true,
	"GenMuon_Pileup_nPU": true,
	"PileUpSV_nPU":       true,
}

// SchemeFor returns the binning category of a catalog variable. Every other
// catalog variable is a transverse momentum or a mass.
func SchemeFor(variable string) Scheme {
	switch {
	case deltaRVars[variable]:
		return DeltaR
	case pileupVars[variable]:
		return Pileup
	}
	return PtMass
}

// Catalog returns the report rows in print order, optionally restricted to models.
func Catalog(models ...string) []Entry {
	keep := map[string]bool{}
	for _, m := range models {
		keep[m] = true
	}
	var out []Entry
	for _, g := range groups {
		if len(keep) > 0 && !keep[g.model] {
			continue
		}
		for _, v := range g.vars {
			out = append(out, Entry{Model: g.model, Object: g.object, Variable: v, Scheme: SchemeFor(v)})
		}
	}
	return out
}

// Models lists the catalog models in print order.
func Models() []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.model
	}
	return out
}
