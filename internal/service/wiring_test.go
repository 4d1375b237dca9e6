package service

import (
	"github.com/noah-isme/roadsafety-api/internal/repository"
	"github.com/noah-isme/roadsafety-api/pkg/export"
	"github.com/noah-isme/roadsafety-api/pkg/resettoken"
	"github.com/noah-isme/roadsafety-api/pkg/storage"
)

// Concrete types the binaries hand to each constructor.
var (
	_ authUserRepository  = (*repository.UserRepository)(nil)
	_ contractorRegistrar = (*repository.ContractorRepository)(nil)
	_ tokenBlocklist      = (*repository.TokenBlocklist)(nil)
	_ resetTokenGenerator = (*resettoken.Generator)(nil)
	_ principalResolver   = (*IdentityService)(nil)

	_ identityUserReader       = (*repository.UserRepository)(nil)
	_ identityContractorReader = (*repository.ContractorRepository)(nil)

	_ complaintStore         = (*repository.ComplaintRepository)(nil)
	_ updateLister           = (*repository.UpdateRepository)(nil)
	_ activeAssignmentFinder = (*repository.AssignmentRepository)(nil)
	_ notifier               = (*NotificationService)(nil)
	_ mediaStorer            = (*MediaService)(nil)

	_ assignmentStore     = (*repository.AssignmentRepository)(nil)
	_ complaintReader     = (*repository.ComplaintRepository)(nil)
	_ contractorDirectory = (*repository.ContractorRepository)(nil)

	_ dashboardComplaintRepository  = (*repository.ComplaintRepository)(nil)
	_ dashboardContractorRepository = (*repository.ContractorRepository)(nil)
	_ dashboardAssignmentRepository = (*repository.AssignmentRepository)(nil)
	_ unreadCounter                 = (*NotificationService)(nil)
	_ emailSearcher                 = (*SearchService)(nil)

	_ contractorStore   = (*repository.ContractorRepository)(nil)
	_ notificationStore = (*repository.NotificationRepository)(nil)

	_ userSearcher     = (*repository.UserRepository)(nil)
	_ contractorLister = (*repository.ContractorRepository)(nil)
	_ complaintLister  = (*repository.ComplaintRepository)(nil)

	_ csvRenderer = (*export.CSVExporter)(nil)
	_ pdfRenderer = (*export.PDFExporter)(nil)

	_ mediaStore  = (*storage.LocalStorage)(nil)
	_ mediaSigner = (*storage.SignedURLSigner)(nil)

	_ maintenanceStore = (*repository.MaintenanceRepository)(nil)
	_ adminCreator     = (*repository.UserRepository)(nil)
	_ mediaPurger      = (*storage.LocalStorage)(nil)

	_ CacheRepository = (*repository.CacheRepository)(nil)
)
